// Package hyprland implements windowinfo.Provider against the Hyprland
// compositor's JSON IPC, grounded on HyprlandWindowInfoProvider in the
// original implementation's get_window_info.py.
package hyprland

import (
	"context"
	"encoding/json"
	"log"
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

var logger = log.New(log.Writer(), "windowinfo/hyprland: ", log.LstdFlags)

type activeWindow struct {
	At      [2]int `json:"at"`
	Size    [2]int `json:"size"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Monitor int    `json:"monitor"`
}

type monitor struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Provider struct {
	runHyprctl func(args ...string) ([]byte, error)
}

func New() *Provider {
	return &Provider{
		runHyprctl: func(args ...string) ([]byte, error) {
			return exec.Command("hyprctl", args...).Output()
		},
	}
}

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
		logger.Printf("attempt %d/%d failed: %v", attempt+1, retries+1, err)
	}
	return nil, nil, errors.Wrap(lastErr, "hyprland: active window query failed")
}

func (p *Provider) queryOnce() (*events.WindowInfo, []events.Bbox, error) {
	monitors, err := p.monitors()
	if err != nil {
		return nil, nil, errors.Wrap(err, "query monitors")
	}

	out, err := p.runHyprctl("-j", "activewindow")
	if err != nil {
		return nil, nil, errors.Wrap(err, "run hyprctl activewindow")
	}

	var aw activeWindow
	if err := json.Unmarshal(out, &aw); err != nil {
		return nil, nil, errors.Wrap(err, "parse hyprctl activewindow output")
	}

	bboxes := make([]events.Bbox, 0, len(monitors))
	var monitorNames []string
	for _, m := range monitors {
		bboxes = append(bboxes, events.Bbox{Left: m.X, Top: m.Y, Width: m.Width, Height: m.Height})
		if m.ID == aw.Monitor {
			monitorNames = append(monitorNames, m.Name)
		}
	}

	wi := &events.WindowInfo{
		Title:   aw.Title,
		AppName: aw.Class,
		Bbox: events.Bbox{
			Left:   aw.At[0],
			Top:    aw.At[1],
			Width:  aw.Size[0],
			Height: aw.Size[1],
		},
		MonitorNames: monitorNames,
	}
	return wi, bboxes, nil
}

func (p *Provider) monitors() ([]monitor, error) {
	out, err := p.runHyprctl("-j", "monitors")
	if err != nil {
		return nil, err
	}
	var monitors []monitor
	if err := json.Unmarshal(out, &monitors); err != nil {
		return nil, err
	}
	return monitors, nil
}

func (p *Provider) Close() error { return nil }

var _ windowinfo.Provider = (*Provider)(nil)
