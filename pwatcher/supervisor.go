package pwatcher

import (
	"sync"

	"git.unix.lgbt/diamondburned/pwatcher/pwatcher/internal/exec"
)

// SupervisorState is the state of a Supervisor.
type SupervisorState int

const (
	// Idle means no server process is held.
	Idle SupervisorState = iota
	// Running means the held server process is alive.
	Running
)

func (s SupervisorState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Supervisor owns at most one server process. It never stops the process;
// an exited process is noticed lazily on the next Start or liveness check.
//
// All methods are safe to call concurrently.
type Supervisor struct {
	j         Journaler
	startProc func(LaunchSpec) (exec.Process, error)

	mu   sync.Mutex
	proc exec.Process
}

// NewSupervisor creates an idle Supervisor that reports into j.
func NewSupervisor(j Journaler) *Supervisor {
	return &Supervisor{
		j: journalerOrNop(j),
		startProc: func(spec LaunchSpec) (exec.Process, error) {
			return exec.StartProcess(spec.Args, spec.Dir)
		},
	}
}

// Start launches the server described by spec unless the held process is
// still alive, in which case nothing happens. A failed launch is journaled and
// returned as a *LaunchError; it is not retried.
func (s *Supervisor) Start(spec LaunchSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		s.j.Write(&EventProcessSkipped{PID: s.proc.PID()})
		return nil
	}

	p, err := s.startProc(spec)
	if err != nil {
		err = &LaunchError{Args: spec.Args, Err: err}
		s.j.Write(&EventProcessSpawnError{Reason: err.Error()})
		return err
	}

	s.proc = p
	s.j.Write(&EventProcessSpawned{PID: p.PID(), Args: spec.Args})

	return nil
}

// Alive polls the held process without blocking and reports whether it is
// still running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.alive()
}

// State returns Running if the held process is alive, or Idle otherwise.
func (s *Supervisor) State() SupervisorState {
	if s.Alive() {
		return Running
	}
	return Idle
}

// PID returns the PID of the held process if it is alive.
func (s *Supervisor) PID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.alive() {
		return 0, false
	}
	return s.proc.PID(), true
}

// alive must be called with mu held. It drops the handle once the process has
// exited.
func (s *Supervisor) alive() bool {
	if s.proc == nil {
		return false
	}

	status, exited := s.proc.Poll()
	if !exited {
		return true
	}

	ev := &EventProcessExited{
		PID:      status.PID,
		ExitCode: status.Code,
	}

	if status.Error != nil {
		ev.Error = status.Error.Error()
	}

	s.j.Write(ev)
	s.proc = nil

	return false
}
