package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRemovePID(t *testing.T) {
	dir := t.TempDir()
	d := New(filepath.Join(dir, "test.pid"))

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error = %v", err)
	}

	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error = %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error = %v", err)
	}

	pid, err = d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() after removal error = %v", err)
	}
	if pid != 0 {
		t.Errorf("ReadPID() after removal = %d, want 0", pid)
	}
}

func TestIsRunningForCurrentProcess(t *testing.T) {
	dir := t.TempDir()
	d := New(filepath.Join(dir, "test.pid"))
	d.WritePID()

	running, pid, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Errorf("IsRunning() = %v, %d; want true, %d", running, pid, os.Getpid())
	}
}

func TestIsRunningFalseWithoutPIDFile(t *testing.T) {
	dir := t.TempDir()
	d := New(filepath.Join(dir, "missing.pid"))

	running, _, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if running {
		t.Error("IsRunning() = true, want false for a missing PID file")
	}
}

func TestRunWritesPIDDuringFnAndRemovesItAfter(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "test.pid")
	d := New(pidFile)

	var sawPID int
	err := d.Run(context.Background(), func(ctx context.Context) error {
		pid, readErr := d.ReadPID()
		if readErr != nil {
			t.Fatalf("ReadPID() during fn error = %v", readErr)
		}
		sawPID = pid
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sawPID != os.Getpid() {
		t.Errorf("PID seen during fn = %d, want %d", sawPID, os.Getpid())
	}

	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Errorf("expected PID file to be removed after Run() returns, stat err = %v", err)
	}
}

func TestRunRemovesPIDFileEvenWhenFnErrors(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "test.pid")
	d := New(pidFile)

	wantErr := errors.New("boom")
	err := d.Run(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Errorf("expected PID file to be removed after fn errors, stat err = %v", err)
	}
}

func TestRunRefusesWhenAlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "test.pid")
	d := New(pidFile)
	d.WritePID() // simulate an already-running instance holding the PID file

	called := false
	err := d.Run(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected Run() to refuse starting a second instance")
	}
	if called {
		t.Error("fn should not run when another instance already holds the PID file")
	}
}
