package pwatcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher watches the plugins directory for new or updated plugin jars.
type Watcher struct {
	// Events receives every plugin jar change that passed the filters.
	Events chan EventPluginChanged

	w      *fsnotify.Watcher
	j      Journaler
	dir    string
	ignore []string
	done   chan struct{}
}

// NewWatcher watches the given directory, non-recursively. The watcher is
// stopped once the given context is canceled; Done is closed after that.
// Jars whose name matches one of the ignore patterns are skipped.
func NewWatcher(ctx context.Context, dir string, ignore []string, j Journaler) (*Watcher, error) {
	w := &Watcher{
		Events: make(chan EventPluginChanged),
		j:      journalerOrNop(j),
		dir:    dir,
		ignore: ignore,
		done:   make(chan struct{}),
	}

	if err := w.init(); err != nil {
		return nil, &WatchError{Dir: dir, Err: err}
	}

	go w.watch(ctx)
	return w, nil
}

// Done returns a channel that is closed once the watcher has stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch dir")
	}

	w.w = watcher
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.done)
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}

			w.j.Write(&EventWarning{
				Component: "watcher",
				Error:     "inotify error: " + err.Error(),
			})

		case evt, ok := <-w.w.Events:
			if !ok {
				return
			}

			event, ok := w.accept(evt)
			if !ok {
				continue
			}

			w.j.Write(&event)

			select {
			case w.Events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// accept filters an fsnotify event down to a plugin change: directories,
// non-jars and ignored jars are dropped.
func (w *Watcher) accept(evt fsnotify.Event) (EventPluginChanged, bool) {
	op, ok := translateFsnotifyOp(evt.Op)
	if !ok {
		return EventPluginChanged{}, false
	}

	// The source side of a rename no longer exists, so a failed stat counts
	// as a file.
	if stat, err := os.Lstat(evt.Name); err == nil && stat.IsDir() {
		return EventPluginChanged{}, false
	}

	name := filepath.Base(evt.Name)
	if !IsArtifact(name) || IsIgnored(name, w.ignore) {
		return EventPluginChanged{}, false
	}

	return EventPluginChanged{Op: op, File: name}, true
}

// translateFsnotifyOp maps the operations that may indicate a new plugin
// version. Removals and permission changes don't.
func translateFsnotifyOp(op fsnotify.Op) (PluginOp, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return PluginCreate, true
	case op&fsnotify.Write != 0:
		return PluginWrite, true
	case op&fsnotify.Rename != 0:
		return PluginRename, true
	default:
		return "", false
	}
}
