package exec

import (
	"sync"
	"time"
)

// SleepProcess is a process that only idles. It is used for testing.
type SleepProcess struct {
	mu       sync.Mutex
	deadline time.Time
	pid      int
	code     int
	exited   bool
}

var _ Process = (*SleepProcess)(nil)

// NewSleepProcess creates a process that exits with code 0 after dura. A
// negative dura makes it idle until Exit is called.
func NewSleepProcess(dura time.Duration, pid int) *SleepProcess {
	mock := &SleepProcess{pid: pid}
	if dura >= 0 {
		mock.deadline = time.Now().Add(dura)
	}
	return mock
}

func (mock *SleepProcess) PID() int { return mock.pid }

// Exit makes the process exit with the given code. Calling it on an already
// exited process does nothing.
func (mock *SleepProcess) Exit(code int) {
	mock.mu.Lock()
	defer mock.mu.Unlock()

	if !mock.exited {
		mock.code = code
		mock.exited = true
	}
}

func (mock *SleepProcess) Poll() (ExitStatus, bool) {
	mock.mu.Lock()
	defer mock.mu.Unlock()

	if !mock.exited && !mock.deadline.IsZero() && !time.Now().Before(mock.deadline) {
		mock.exited = true
	}

	return ExitStatus{PID: mock.pid, Code: mock.code}, mock.exited
}
