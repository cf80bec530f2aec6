package exec

import (
	"os"
	osexec "os/exec"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestStartProcess(t *testing.T) {
	t.Run("exit code", func(t *testing.T) {
		if _, err := osexec.LookPath("sh"); err != nil {
			t.Skip("sh not available:", err)
		}

		p, err := StartProcess([]string{"sh", "-c", "exit 3"}, t.TempDir())
		if err != nil {
			t.Fatal("failed to start:", err)
		}

		pid := p.PID()
		if pid <= 0 {
			t.Fatalf("invalid PID %d", pid)
		}

		status := waitPoll(t, p)
		if status.Code != 3 {
			t.Errorf("expected exit code 3, got %d", status.Code)
		}
		if status.PID != pid {
			t.Errorf("expected status PID %d, got %d", pid, status.PID)
		}
		// The PID must survive reaping.
		if p.PID() != pid {
			t.Errorf("expected PID %d after exit, got %d", pid, p.PID())
		}

		// Polling again must keep returning the final status.
		again, exited := p.Poll()
		if !exited || again != status {
			t.Errorf("unstable final status: %#v, %v", again, exited)
		}
	})

	t.Run("still running", func(t *testing.T) {
		if _, err := osexec.LookPath("sleep"); err != nil {
			t.Skip("sleep not available:", err)
		}

		p, err := StartProcess([]string{"sleep", "5"}, t.TempDir())
		if err != nil {
			t.Fatal("failed to start:", err)
		}
		t.Cleanup(func() {
			unix.Kill(p.PID(), unix.SIGKILL)
			waitPoll(t, p)
		})

		if _, exited := p.Poll(); exited {
			t.Fatal("sleep exited too early")
		}
	})

	t.Run("relative to dir", func(t *testing.T) {
		if _, err := osexec.LookPath("sh"); err != nil {
			t.Skip("sh not available:", err)
		}

		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "bin"), 0755); err != nil {
			t.Fatal(err)
		}

		script := filepath.Join(dir, "bin", "fakejava")
		if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 5\n"), 0755); err != nil {
			t.Fatal(err)
		}

		// The test's working directory has no ./bin/fakejava, so this only
		// works if the path is resolved against dir.
		p, err := StartProcess([]string{"./bin/fakejava"}, dir)
		if err != nil {
			t.Fatal("failed to start:", err)
		}

		if status := waitPoll(t, p); status.Code != 5 {
			t.Errorf("expected exit code 5, got %d", status.Code)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := StartProcess([]string{"pwatcher-definitely-missing-binary"}, t.TempDir())
		if err == nil {
			t.Fatal("expected error for missing binary")
		}
	})

	t.Run("empty argv", func(t *testing.T) {
		if _, err := StartProcess(nil, ""); err == nil {
			t.Fatal("expected error for empty argv")
		}
	})
}

func TestSleepProcess(t *testing.T) {
	p := NewSleepProcess(-1, 42)
	if _, exited := p.Poll(); exited {
		t.Fatal("idle process exited")
	}

	p.Exit(7)
	p.Exit(9) // no-op

	status, exited := p.Poll()
	if !exited || status.Code != 7 || status.PID != 42 {
		t.Fatalf("unexpected status %#v, exited=%v", status, exited)
	}

	timed := NewSleepProcess(0, 1)
	if _, exited := timed.Poll(); !exited {
		t.Fatal("zero-duration process did not exit")
	}
}

func waitPoll(t *testing.T, p Process) ExitStatus {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if status, exited := p.Poll(); exited {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("timed out waiting for process to exit")
	return ExitStatus{}
}
