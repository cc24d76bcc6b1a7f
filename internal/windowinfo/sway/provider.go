// Package sway implements windowinfo.Provider against Sway's JSON IPC,
// grounded on SwayWindowInfoProvider in the original implementation's
// get_window_info.py.
package sway

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

var logger = log.New(log.Writer(), "windowinfo/sway: ", log.LstdFlags)

type rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type node struct {
	Type           string `json:"type"`
	Focused        bool   `json:"focused"`
	Name           string `json:"name"`
	AppID          string `json:"app_id"`
	Rect           rect   `json:"rect"`
	Nodes          []node `json:"nodes"`
	FloatingNodes  []node `json:"floating_nodes"`
	WindowProperty struct {
		Class string `json:"class"`
		Title string `json:"title"`
	} `json:"window_properties"`
}

type output struct {
	Name   string `json:"name"`
	Rect   rect   `json:"rect"`
	Active bool   `json:"active"`
}

func findFocused(n node) (node, bool) {
	if n.Focused {
		return n, true
	}
	for _, child := range n.Nodes {
		if found, ok := findFocused(child); ok {
			return found, true
		}
	}
	for _, child := range n.FloatingNodes {
		if found, ok := findFocused(child); ok {
			return found, true
		}
	}
	return node{}, false
}

type Provider struct {
	runSwaymsg func(args ...string) ([]byte, error)
}

func New() *Provider {
	return &Provider{
		runSwaymsg: func(args ...string) ([]byte, error) {
			return exec.Command("swaymsg", args...).Output()
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

		wi, outputs, err := p.queryOnce()
		if err == nil {
			return wi, outputs, nil
		}
		lastErr = err
		logger.Printf("attempt %d/%d failed: %v", attempt+1, retries+1, err)
	}
	return nil, nil, errors.Wrap(lastErr, "sway: active window query failed")
}

func (p *Provider) queryOnce() (*events.WindowInfo, []events.Bbox, error) {
	outputs, err := p.outputs()
	if err != nil {
		return nil, nil, errors.Wrap(err, "query outputs")
	}

	out, err := p.runSwaymsg("-t", "get_tree")
	if err != nil {
		return nil, nil, errors.Wrap(err, "run swaymsg get_tree")
	}

	var root node
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, nil, errors.Wrap(err, "parse swaymsg get_tree output")
	}

	focused, ok := findFocused(root)
	if !ok {
		return nil, nil, errors.New("sway: no focused node in tree")
	}

	title := focused.WindowProperty.Title
	if title == "" {
		title = focused.Name
	}
	appName := focused.AppID
	if appName == "" {
		appName = focused.WindowProperty.Class
	}

	bboxes := make([]events.Bbox, 0, len(outputs))
	var monitorNames []string
	centerX := focused.Rect.X + focused.Rect.Width/2
	centerY := focused.Rect.Y + focused.Rect.Height/2
	for _, o := range outputs {
		if !o.Active {
			continue
		}
		bboxes = append(bboxes, events.Bbox{Left: o.Rect.X, Top: o.Rect.Y, Width: o.Rect.Width, Height: o.Rect.Height})
		if centerX >= o.Rect.X && centerX < o.Rect.X+o.Rect.Width &&
			centerY >= o.Rect.Y && centerY < o.Rect.Y+o.Rect.Height {
			monitorNames = append(monitorNames, o.Name)
		}
	}

	wi := &events.WindowInfo{
		Title:   title,
		AppName: appName,
		Bbox: events.Bbox{
			Left:   focused.Rect.X,
			Top:    focused.Rect.Y,
			Width:  focused.Rect.Width,
			Height: focused.Rect.Height,
		},
		MonitorNames: monitorNames,
	}
	return wi, bboxes, nil
}

func (p *Provider) outputs() ([]output, error) {
	out, err := p.runSwaymsg("-t", "get_outputs")
	if err != nil {
		return nil, err
	}
	var outputs []output
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (p *Provider) Close() error { return nil }

var _ windowinfo.Provider = (*Provider)(nil)
