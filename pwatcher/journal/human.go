package journal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"git.unix.lgbt/diamondburned/pwatcher/pwatcher"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Level is the severity shown by HumanWriter.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// HumanWriter is a journaler that writes one readable line per event, such as
//
//	[12:04:05] [INFO] Config loaded.
//
// The level is colored unless color output is disabled, which fatih/color
// does by default when the output is not a terminal.
type HumanWriter struct {
	// Now returns the time printed in front of each line.
	Now func() time.Time

	mu     sync.Mutex
	w      io.Writer
	colors map[Level]*color.Color
}

var _ pwatcher.Journaler = (*HumanWriter)(nil)

// NewHumanWriter creates a new human-readable journaler.
func NewHumanWriter(w io.Writer) *HumanWriter {
	return &HumanWriter{
		Now: time.Now,
		w:   w,
		colors: map[Level]*color.Color{
			LevelInfo:  color.New(color.FgGreen),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed, color.Bold),
		},
	}
}

// DisableColor forces plain output.
func (h *HumanWriter) DisableColor() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.colors {
		c.DisableColor()
	}
}

func (h *HumanWriter) Write(ev pwatcher.Event) error {
	level, msg := Describe(ev)

	h.mu.Lock()
	defer h.mu.Unlock()

	tag := h.colors[level].Sprint(string(level))

	_, err := fmt.Fprintf(h.w, "[%s] [%s] %s\n", h.Now().Format("15:04:05"), tag, msg)
	if err != nil {
		return errors.Wrap(err, "failed to write event")
	}

	return nil
}

// Describe renders an event as a severity and a one-line message.
func Describe(ev pwatcher.Event) (Level, string) {
	switch ev := ev.(type) {
	case *pwatcher.EventWarning:
		return LevelWarn, fmt.Sprintf("%s: %s", ev.Component, ev.Error)

	case *pwatcher.EventAcquired:
		return LevelInfo, "Journal lock acquired."

	case *pwatcher.EventConfigLoaded:
		if ev.Error != "" {
			return LevelWarn, "Config loaded with defaults: " + ev.Error
		}
		if !ev.Found {
			return LevelInfo, "Config loaded (defaults, no " + ev.File + ")."
		}
		return LevelInfo, "Config loaded."

	case *pwatcher.EventMemoryDetected:
		return LevelInfo, fmt.Sprintf(
			"RAM detection: system=%d GB, allocating=%d GB (mode=%s)",
			ev.SystemGB, ev.AllocatedGB, ev.Mode,
		)

	case *pwatcher.EventWatcherStarted:
		return LevelInfo, "Plugin Refresh Watcher Active..."

	case *pwatcher.EventWatcherStopped:
		return LevelInfo, "Plugin Refresh Watcher stopped."

	case *pwatcher.EventPluginChanged:
		return LevelInfo, fmt.Sprintf("Plugin %s: %s", ev.Op, ev.File)

	case *pwatcher.EventProcessSpawnError:
		return LevelError, "Server failed to start: " + ev.Reason

	case *pwatcher.EventProcessSpawned:
		return LevelInfo, fmt.Sprintf("Server started (pid %d): %s", ev.PID, strings.Join(ev.Args, " "))

	case *pwatcher.EventProcessSkipped:
		return LevelInfo, fmt.Sprintf("Server already running (pid %d), not restarting.", ev.PID)

	case *pwatcher.EventProcessExited:
		msg := fmt.Sprintf("Server exited (pid %d, code %d)", ev.PID, ev.ExitCode)
		if ev.Error != "" {
			msg += ": " + ev.Error
		}
		if !ev.IsGraceful() {
			return LevelWarn, msg
		}
		return LevelInfo, msg

	default:
		return LevelInfo, ev.Type()
	}
}
