// Package x11 implements windowinfo.Provider natively against the X11
// protocol via github.com/jezek/xgb, replacing the teacher's
// xdotool/wmctrl subprocess shells with the library-based EWMH query the
// pkgV2 demo sketched but never wired into the real detector.
package x11

import (
	"context"
	"encoding/binary"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

type Provider struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// New opens an X11 connection and interns the atoms the provider needs.
func New() (*Provider, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "x11: connect")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	p := &Provider{
		conn:  conn,
		root:  screen.Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "x11: intern atom %s", name)
		}
		p.atoms[name] = reply.Atom
	}

	return p, nil
}

func (p *Provider) getProperty(window xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(p.conn, false, window, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (p *Provider) activeWindowFromProperty() xproto.Window {
	data, err := p.getProperty(p.root, p.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (p *Provider) activeWindowFromInputFocus() xproto.Window {
	reply, err := xproto.GetInputFocus(p.conn).Reply()
	if err != nil {
		return 0
	}
	return reply.Focus
}

func (p *Provider) topLevelParent(window xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(p.conn, window).Reply()
		if err != nil || reply.Parent == p.root || reply.Parent == 0 {
			return window
		}
		window = reply.Parent
	}
}

func (p *Provider) hasValidName(window xproto.Window) bool {
	data, _ := p.getProperty(window, p.atoms["_NET_WM_NAME"], p.atoms["UTF8_STRING"], 1)
	if len(data) > 0 {
		return true
	}
	data, _ = p.getProperty(window, p.atoms["WM_NAME"], xproto.AtomString, 1)
	return len(data) > 0
}

func (p *Provider) findActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (xproto.Window, error) {
	for attempt := 0; attempt <= retries; attempt++ {
		windowID := p.activeWindowFromProperty()
		if windowID != 0 && p.hasValidName(windowID) {
			return windowID, nil
		}

		windowID = p.activeWindowFromInputFocus()
		if windowID != 0 && windowID != p.root {
			top := p.topLevelParent(windowID)
			if top != 0 && p.hasValidName(top) {
				return top, nil
			}
		}

		if attempt < retries {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(cooldown):
			}
		}
	}
	return 0, errors.New("x11: no active window found")
}

func (p *Provider) windowName(window xproto.Window) string {
	data, err := p.getProperty(window, p.atoms["_NET_WM_NAME"], p.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	data, err = p.getProperty(window, p.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

func (p *Provider) windowClass(window xproto.Window) (instance, class string) {
	data, err := p.getProperty(window, p.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

// geometry returns the window's absolute bbox by walking to the root
// through translate-coordinates, since GetGeometry alone only reports
// parent-relative coordinates.
func (p *Provider) geometry(window xproto.Window) (events.Bbox, error) {
	geom, err := xproto.GetGeometry(p.conn, xproto.Drawable(window)).Reply()
	if err != nil {
		return events.Bbox{}, err
	}
	translated, err := xproto.TranslateCoordinates(p.conn, window, p.root, 0, 0).Reply()
	if err != nil {
		return events.Bbox{}, err
	}
	return events.Bbox{
		Left:   int(translated.DstX),
		Top:    int(translated.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// rootGeometry returns the single virtual-desktop bbox for the root
// window. This provider doesn't probe RandR, so multi-monitor setups are
// reported as one combined bbox.
func (p *Provider) rootGeometry() (events.Bbox, error) {
	geom, err := xproto.GetGeometry(p.conn, xproto.Drawable(p.root)).Reply()
	if err != nil {
		return events.Bbox{}, err
	}
	return events.Bbox{Left: 0, Top: 0, Width: int(geom.Width), Height: int(geom.Height)}, nil
}

func (p *Provider) ActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (*events.WindowInfo, []events.Bbox, error) {
	windowID, err := p.findActiveWindow(ctx, retries, cooldown)
	if err != nil {
		return nil, nil, errors.Wrap(err, "x11: active window query failed")
	}

	bbox, err := p.geometry(windowID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "x11: query window geometry")
	}

	root, err := p.rootGeometry()
	if err != nil {
		return nil, nil, errors.Wrap(err, "x11: query root geometry")
	}

	instance, _ := p.windowClass(windowID)

	wi := &events.WindowInfo{
		Title:        p.windowName(windowID),
		AppName:      instance,
		Bbox:         bbox,
		MonitorNames: []string{"root"},
	}
	return wi, []events.Bbox{root}, nil
}

func (p *Provider) Close() error {
	p.conn.Close()
	return nil
}

var _ windowinfo.Provider = (*Provider)(nil)
