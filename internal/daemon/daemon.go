// Package daemon owns the PID-file-backed lifecycle of the agent process
// itself: Run wraps the scheduler/dispatcher/heartbeat pipeline so starting,
// stopping, and checking status all go through one PID-file-guarded entry
// point instead of cmd/agentd managing the file by hand.
package daemon

import (
	"context"
	"os"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
)

// Daemon guards a single long-running agent instance behind one PID file.
type Daemon struct {
	pidFile string
}

// New creates a new daemon manager for the given PID file path.
func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// Run writes the PID file, runs fn until it returns or ctx is canceled, and
// removes the PID file on the way out regardless of how fn exits. It
// refuses to start if another instance is already running against the same
// PID file, so the scheduler/dispatcher/heartbeat pipeline in cmd/agentd
// never ends up with two live copies fighting over the same backend token.
func (d *Daemon) Run(ctx context.Context, fn func(context.Context) error) error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "check daemon status")
	}
	if running {
		return errors.Errorf("daemon already running (pid %d)", pid)
	}

	if err := d.WritePID(); err != nil {
		return errors.Wrap(err, "write PID file")
	}
	defer d.RemovePID()

	return fn(ctx)
}

// WritePID writes the current process PID to the PID file.
func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), 0644)
}

// ReadPID reads the PID from the PID file. A missing file is not an error:
// it reports PID 0.
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "read PID file")
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

// RemovePID removes the PID file, if present.
func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove PID file")
	}
	return nil
}

// IsRunning reports whether the process named in the PID file is still
// alive, cleaning up a stale PID file left behind by a crashed instance.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM to the running daemon and removes its PID file.
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return err
	}

	if !running {
		return errors.New("daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrap(err, "find process")
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return errors.Wrap(err, "send SIGTERM")
	}

	return d.RemovePID()
}
