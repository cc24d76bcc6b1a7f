//go:build windows

// Package winnative implements idle.Detector via user32.GetLastInputInfo,
// a synchronous local call so IsAsync reports false.
package winnative

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/clepsy/deskagent/internal/idle"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	CbSize uint32
	DwTime uint32
}

type Detector struct{}

func New() *Detector { return &Detector{} }

func (d *Detector) IsAsync() bool { return false }

func (d *Detector) Scope(ctx context.Context) (idle.Session, error) {
	return &session{}, nil
}

type session struct{}

func (s *session) IdleSeconds(ctx context.Context) (float64, error) {
	var info lastInputInfo
	info.CbSize = uint32(unsafe.Sizeof(info))
	procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))

	tick, _, _ := procGetTickCount.Call()
	elapsedMs := uint32(tick) - info.DwTime
	return float64(elapsedMs) / 1000.0, nil
}

func (s *session) Close() error { return nil }

var _ idle.Detector = (*Detector)(nil)
