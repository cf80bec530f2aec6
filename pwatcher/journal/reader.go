package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"git.unix.lgbt/diamondburned/pwatcher/pwatcher"
	"github.com/diamondburned/backwardio"
	"github.com/pkg/errors"
)

// Reader reads journals written by Writer from the bottom up, so the newest
// event comes first.
type Reader struct {
	b *backwardio.Scanner
}

// NewReader creates a new journal reader.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{backwardio.NewScanner(r)}
}

// Read reads a single entry, starting from the end of the file. An EOF error
// is returned once the file has been fully consumed.
func (r *Reader) Read() (pwatcher.Event, time.Time, error) {
	var line []byte
	var err error

	for {
		line, err = r.b.ReadUntil('\n')
		if err != nil {
			return nil, time.Time{}, err
		}
		if len(line) > 0 {
			break
		}
	}

	var rawEvent struct {
		Time time.Time       `json:"time"`
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(line, &rawEvent); err != nil {
		return nil, time.Time{}, &DecodeError{errors.Wrap(err, "failed to decode JSON")}
	}

	event := pwatcher.NewEvent(rawEvent.Type)
	if event == nil {
		return nil, time.Time{}, &DecodeError{fmt.Errorf("unknown event %q", rawEvent.Type)}
	}

	if err := json.Unmarshal(rawEvent.Data, event); err != nil {
		return nil, time.Time{}, &DecodeError{errors.Wrap(err, "failed to decode event data")}
	}

	return event, rawEvent.Time, nil
}

// DecodeError is returned by Reader when a line is not a valid event. The
// reader can keep going after it.
type DecodeError struct {
	Err error
}

func (err *DecodeError) Error() string { return err.Err.Error() }
func (err *DecodeError) Unwrap() error { return err.Err }

// Entry is a decoded journal line.
type Entry struct {
	Time  time.Time
	Event pwatcher.Event
}

// ReadLast reads at most n of the newest entries of the journal file at path,
// newest first. Lines that fail to decode are skipped. Nothing is read if n is
// not positive.
func ReadLast(path string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := NewReader(f)
	entries := make([]Entry, 0, n)

	for len(entries) < n {
		ev, t, err := r.Read()
		if err != nil {
			var decodeErr *DecodeError
			switch {
			case errors.Is(err, io.EOF):
				return entries, nil
			case errors.As(err, &decodeErr):
				continue
			default:
				return entries, err
			}
		}

		entries = append(entries, Entry{Time: t, Event: ev})
	}

	return entries, nil
}
