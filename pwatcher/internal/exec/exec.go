// Package exec provides an abstraction around package os' Process
// implementation for easier testing.
package exec

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Process describes a spawned command process.
type Process interface {
	PID() int
	// Poll reports whether the process has exited without blocking. Once it
	// returns true, the returned status is final.
	Poll() (ExitStatus, bool)
}

// ExitStatus is a process' exit status.
type ExitStatus struct {
	PID   int
	Code  int // -1 if killed by a signal
	Error error
}

type process struct {
	*os.Process
	pid int // Release resets Process.Pid, so keep our own copy

	mu     sync.Mutex
	status ExitStatus
	exited bool
}

var _ Process = (*process)(nil)

// StartProcess creates a new command process on the system. argv[0] is
// resolved through $PATH, or against dir if it is a relative path such as
// "./bin/java". The process is started inside dir with the standard streams of
// the current process.
//
// The child is deliberately not tied to our lifetime: no Pdeathsig is set, so
// it keeps running if the watcher exits.
func StartProcess(argv []string, dir string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}

	name := argv[0]
	if strings.ContainsRune(name, filepath.Separator) && !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}

	path, err := osexec.LookPath(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find %q", argv[0])
	}

	p, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   dir,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return nil, err
	}

	return &process{Process: p, pid: p.Pid}, nil
}

func (proc *process) PID() int {
	return proc.pid
}

// Poll reaps the process with WNOHANG. It never blocks.
func (proc *process) Poll() (ExitStatus, bool) {
	proc.mu.Lock()
	defer proc.mu.Unlock()

	if proc.exited {
		return proc.status, true
	}

	var ws unix.WaitStatus

	wpid, err := unix.Wait4(proc.pid, &ws, unix.WNOHANG, nil)
	switch {
	case err == unix.EINTR:
		return ExitStatus{PID: proc.pid}, false

	case err != nil:
		// ECHILD: someone else reaped it, so it's gone either way.
		proc.finish(ExitStatus{
			PID:   proc.pid,
			Code:  -1,
			Error: errors.Wrap(err, "failed to wait for process"),
		})

	case wpid == 0:
		return ExitStatus{PID: proc.pid}, false

	default:
		code := ws.ExitStatus()
		if ws.Signaled() {
			code = -1
		}

		proc.finish(ExitStatus{PID: proc.pid, Code: code})
	}

	return proc.status, true
}

func (proc *process) finish(status ExitStatus) {
	proc.status = status
	proc.exited = true
	proc.Process.Release()
}
