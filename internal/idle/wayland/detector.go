// Package wayland implements idle.Detector for Wayland sessions via the
// 7-probe DBus cascade in WaylandIdleDetector (original implementation's
// idle_detector.py): Mutter's IdleMonitor, the freedesktop ScreenSaver
// interface, the XDG desktop portal's Inhibit.CreateMonitor signal,
// systemd-logind's session property-change signal, a loginctl CLI
// fallback, a one-shot system-bus property fetch, and finally 0.
package wayland

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/idle"
)

const (
	mutterDest = "org.gnome.Mutter.IdleMonitor"
	mutterPath = "/org/gnome/Mutter/IdleMonitor/Core"

	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"

	portalDest = "org.freedesktop.portal.Desktop"
	portalPath = "/org/freedesktop/portal/desktop"

	logindDest = "org.freedesktop.login1"
)

type Detector struct{}

func New() *Detector { return &Detector{} }

func (d *Detector) IsAsync() bool { return true }

func (d *Detector) Scope(ctx context.Context) (idle.Session, error) {
	sessionBus, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "wayland: connect session bus")
	}

	systemBus, err := dbus.SystemBus()
	if err != nil {
		sessionBus.Close()
		return nil, errors.Wrap(err, "wayland: connect system bus")
	}

	s := &session{
		sessionBus: sessionBus,
		systemBus:  systemBus,
	}
	s.subscribePortal()
	s.subscribeLogind()

	return s, nil
}

type session struct {
	sessionBus *dbus.Conn
	systemBus  *dbus.Conn

	mu             sync.Mutex
	portalIdleSince time.Time
	portalIsIdle    bool

	logindActivityAt time.Time
	logindSeen       bool
}

func (s *session) subscribePortal() {
	sig := dbus.WithMatchInterface("org.freedesktop.portal.Inhibit")
	if err := s.sessionBus.AddMatchSignal(sig); err != nil {
		return
	}
	// StateChanged is only emitted for monitors this client has created.
	portal := s.sessionBus.Object(portalDest, portalPath)
	if call := portal.Call("org.freedesktop.portal.Inhibit.CreateMonitor", 0, "", map[string]dbus.Variant{}); call.Err != nil {
		return
	}
	ch := make(chan *dbus.Signal, 8)
	s.sessionBus.Signal(ch)
	go func() {
		for sg := range ch {
			if sg.Name != "org.freedesktop.portal.Inhibit.StateChanged" {
				continue
			}
			if len(sg.Body) < 2 {
				continue
			}
			state, ok := sg.Body[1].(map[string]dbus.Variant)
			if !ok {
				continue
			}
			v, ok := state["screensaver-active"]
			if !ok {
				continue
			}
			active, _ := v.Value().(bool)
			s.mu.Lock()
			s.portalIsIdle = active
			s.portalIdleSince = time.Now()
			s.mu.Unlock()
		}
	}()
}

func (s *session) subscribeLogind() {
	sig := dbus.WithMatchInterface("org.freedesktop.DBus.Properties")
	if err := s.systemBus.AddMatchSignal(sig); err != nil {
		return
	}
	ch := make(chan *dbus.Signal, 8)
	s.systemBus.Signal(ch)
	go func() {
		for sg := range ch {
			if sg.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" {
				continue
			}
			s.mu.Lock()
			s.logindActivityAt = time.Now()
			s.logindSeen = true
			s.mu.Unlock()
		}
	}()
}

func (s *session) IdleSeconds(ctx context.Context) (float64, error) {
	if secs, ok := s.mutterIdleTime(); ok {
		return secs, nil
	}
	if secs, ok := s.freedesktopIdleTime(); ok {
		return secs, nil
	}
	if secs, ok := s.portalIdleTime(); ok {
		return secs, nil
	}
	if secs, ok := s.logindIdleTime(); ok {
		return secs, nil
	}
	if secs, ok := s.loginctlIdleTime(ctx); ok {
		return secs, nil
	}
	if secs, ok := s.systemBusPropertyFetch(); ok {
		return secs, nil
	}
	return 0, nil
}

func (s *session) mutterIdleTime() (float64, bool) {
	obj := s.sessionBus.Object(mutterDest, mutterPath)
	call := obj.Call(mutterDest+".GetIdletime", 0)
	if call.Err != nil {
		return 0, false
	}
	var ms uint64
	if err := call.Store(&ms); err != nil {
		return 0, false
	}
	return float64(ms) / 1000.0, true
}

func (s *session) freedesktopIdleTime() (float64, bool) {
	obj := s.sessionBus.Object(screenSaverDest, screenSaverPath)
	call := obj.Call(screenSaverDest+".GetSessionIdleTime", 0)
	if call.Err != nil {
		return 0, false
	}
	var secs uint32
	if err := call.Store(&secs); err != nil {
		return 0, false
	}
	return float64(secs), true
}

func (s *session) portalIdleTime() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portalIdleSince.IsZero() {
		return 0, false
	}
	if !s.portalIsIdle {
		return 0, true
	}
	return time.Since(s.portalIdleSince).Seconds(), true
}

func (s *session) logindIdleTime() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.logindSeen {
		return 0, false
	}
	return time.Since(s.logindActivityAt).Seconds(), true
}

func (s *session) loginctlIdleTime(ctx context.Context) (float64, bool) {
	cmd := exec.CommandContext(ctx, "loginctl", "show-session", "self", "-p", "IdleSinceHint")
	out, err := cmd.Output()
	if err != nil {
		return 0, false
	}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		const prefix = "IdleSinceHint="
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		usecStr := strings.TrimPrefix(line, prefix)
		usec, err := strconv.ParseInt(usecStr, 10, 64)
		if err != nil || usec == 0 {
			return 0, false
		}
		since := time.UnixMicro(usec)
		return time.Since(since).Seconds(), true
	}
	return 0, false
}

func (s *session) systemBusPropertyFetch() (float64, bool) {
	obj := s.systemBus.Object(logindDest, "/org/freedesktop/login1/session/self")
	var props map[string]dbus.Variant
	err := obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, "org.freedesktop.login1.Session").Store(&props)
	if err != nil {
		return 0, false
	}
	v, ok := props["IdleHint"]
	if !ok {
		return 0, false
	}
	idle, _ := v.Value().(bool)
	if !idle {
		return 0, true
	}
	return 0, false
}

func (s *session) Close() error {
	s.sessionBus.Close()
	s.systemBus.Close()
	return nil
}

var _ idle.Detector = (*Detector)(nil)
