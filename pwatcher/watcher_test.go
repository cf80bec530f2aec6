package pwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j := mockJournal{}

	w, err := NewWatcher(ctx, dir, []string{"ignored"}, &j)
	require.NoError(t, err)

	touch := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("PK"), 0644))
	}

	// None of these should make it through.
	touch("notes.txt")
	touch("helper.jar.bak")
	touch("IgnoredPlugin.jar")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.jar"), 0755))

	touch("CoolPlugin.JAR")

	select {
	case ev := <-w.Events:
		assert.Equal(t, "CoolPlugin.JAR", ev.File)
		assert.Equal(t, PluginCreate, ev.Op)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for plugin event")
	}

	// Drain the write events of the same file.
	drain(w)

	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	for _, ev := range j.Journals() {
		changed, ok := ev.(*EventPluginChanged)
		if ok {
			assert.Equal(t, "CoolPlugin.JAR", changed.File)
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(context.Background(), filepath.Join(t.TempDir(), "gone"), nil, nil)

	var watchErr *WatchError
	require.ErrorAs(t, err, &watchErr)
}

func TestWatcherAccept(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jar"), 0755))

	w := &Watcher{dir: dir, ignore: []string{"cool"}}

	type test struct {
		name   string
		evt    fsnotify.Event
		expect *EventPluginChanged
	}

	tests := []test{
		{"create", fsnotify.Event{Name: filepath.Join(dir, "a.jar"), Op: fsnotify.Create},
			&EventPluginChanged{Op: PluginCreate, File: "a.jar"}},
		{"write", fsnotify.Event{Name: filepath.Join(dir, "a.jar"), Op: fsnotify.Write},
			&EventPluginChanged{Op: PluginWrite, File: "a.jar"}},
		{"rename", fsnotify.Event{Name: filepath.Join(dir, "gone.jar"), Op: fsnotify.Rename},
			&EventPluginChanged{Op: PluginRename, File: "gone.jar"}},
		{"remove", fsnotify.Event{Name: filepath.Join(dir, "a.jar"), Op: fsnotify.Remove}, nil},
		{"chmod", fsnotify.Event{Name: filepath.Join(dir, "a.jar"), Op: fsnotify.Chmod}, nil},
		{"directory", fsnotify.Event{Name: filepath.Join(dir, "sub.jar"), Op: fsnotify.Create}, nil},
		{"ignored", fsnotify.Event{Name: filepath.Join(dir, "CoolPlugin.JAR"), Op: fsnotify.Create}, nil},
		{"backup", fsnotify.Event{Name: filepath.Join(dir, "helper.jar.bak"), Op: fsnotify.Create}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ev, ok := w.accept(test.evt)
			if test.expect == nil {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, *test.expect, ev)
		})
	}
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Events:
		case <-time.After(100 * time.Millisecond):
			return
		}
	}
}
