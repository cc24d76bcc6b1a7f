//go:build windows

// Package winnative implements windowinfo.Provider against user32.dll via
// golang.org/x/sys/windows, grounded on the ChatClaw pkg/winsnap
// windows.go pattern (NewLazySystemDLL + NewProc, no cgo).
package winnative

import (
	"context"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procEnumDisplayMonitors      = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW          = user32.NewProc("GetMonitorInfoW")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type monitorInfo struct {
	CbSize    uint32
	RcMonitor rect
	RcWork    rect
	DwFlags   uint32
}

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) ActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (*events.WindowInfo, []events.Bbox, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(cooldown):
			}
		}
		wi, monitors, err := p.queryOnce()
		if err == nil {
			return wi, monitors, nil
		}
		lastErr = err
	}
	return nil, nil, errors.Wrap(lastErr, "winnative: active window query failed")
}

func (p *Provider) queryOnce() (*events.WindowInfo, []events.Bbox, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil, nil, errors.New("winnative: no foreground window")
	}

	title := windowText(hwnd)

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

	var r rect
	procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))

	wi := &events.WindowInfo{
		Title:   title,
		AppName: processName(pid),
		Bbox: events.Bbox{
			Left:   int(r.Left),
			Top:    int(r.Top),
			Width:  int(r.Right - r.Left),
			Height: int(r.Bottom - r.Top),
		},
	}

	monitors := enumMonitors()
	return wi, monitors, nil
}

func windowText(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	return syscall.UTF16ToString(buf)
}

func processName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}

func enumMonitors() []events.Bbox {
	var boxes []events.Bbox
	cb := syscall.NewCallback(func(hMonitor uintptr, hdc uintptr, lprc uintptr, lParam uintptr) uintptr {
		var mi monitorInfo
		mi.CbSize = uint32(unsafe.Sizeof(mi))
		procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&mi)))
		boxes = append(boxes, events.Bbox{
			Left:   int(mi.RcMonitor.Left),
			Top:    int(mi.RcMonitor.Top),
			Width:  int(mi.RcMonitor.Right - mi.RcMonitor.Left),
			Height: int(mi.RcMonitor.Bottom - mi.RcMonitor.Top),
		})
		return 1
	})
	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	return boxes
}

func (p *Provider) Close() error { return nil }

var _ windowinfo.Provider = (*Provider)(nil)
