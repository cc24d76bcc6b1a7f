// Package grim implements screenshot.Screenshotter for wlroots Wayland
// compositors via the grim CLI, grounded on GrimScreenshotter in the
// original implementation's screenshotter.py: the capture rectangle is
// clamped to the union of the output layout (queried the same way the
// matching windowinfo backend queries monitors) before grim is invoked.
package grim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	screenshotpkg "github.com/clepsy/deskagent/internal/screenshot"
)

const captureTimeout = 5 * time.Second

// LayoutFunc returns the absolute bboxes of every connected output.
type LayoutFunc func() ([]events.Bbox, error)

// HyprlandLayout queries `hyprctl -j monitors`.
func HyprlandLayout() ([]events.Bbox, error) {
	out, err := exec.Command("hyprctl", "-j", "monitors").Output()
	if err != nil {
		return nil, errors.Wrap(err, "grim: query hyprctl monitors")
	}
	var monitors []struct {
		X, Y, Width, Height int
	}
	if err := json.Unmarshal(out, &monitors); err != nil {
		return nil, errors.Wrap(err, "grim: parse hyprctl monitors")
	}
	boxes := make([]events.Bbox, 0, len(monitors))
	for _, m := range monitors {
		boxes = append(boxes, events.Bbox{Left: m.X, Top: m.Y, Width: m.Width, Height: m.Height})
	}
	return boxes, nil
}

// SwayLayout queries `swaymsg -t get_outputs`.
func SwayLayout() ([]events.Bbox, error) {
	out, err := exec.Command("swaymsg", "-t", "get_outputs").Output()
	if err != nil {
		return nil, errors.Wrap(err, "grim: query swaymsg outputs")
	}
	var outputs []struct {
		Rect struct{ X, Y, Width, Height int } `json:"rect"`
		Active bool                            `json:"active"`
	}
	if err := json.Unmarshal(out, &outputs); err != nil {
		return nil, errors.Wrap(err, "grim: parse swaymsg outputs")
	}
	boxes := make([]events.Bbox, 0, len(outputs))
	for _, o := range outputs {
		if !o.Active {
			continue
		}
		boxes = append(boxes, events.Bbox{Left: o.Rect.X, Top: o.Rect.Y, Width: o.Rect.Width, Height: o.Rect.Height})
	}
	return boxes, nil
}

// layoutBounds returns the smallest bbox enclosing every output.
func layoutBounds(boxes []events.Bbox) (events.Bbox, error) {
	if len(boxes) == 0 {
		return events.Bbox{}, errors.New("grim: empty output layout")
	}
	left, top := boxes[0].Left, boxes[0].Top
	right, bottom := boxes[0].Left+boxes[0].Width, boxes[0].Top+boxes[0].Height
	for _, b := range boxes[1:] {
		if b.Left < left {
			left = b.Left
		}
		if b.Top < top {
			top = b.Top
		}
		if r := b.Left + b.Width; r > right {
			right = r
		}
		if bot := b.Top + b.Height; bot > bottom {
			bottom = bot
		}
	}
	return events.Bbox{Left: left, Top: top, Width: right - left, Height: bottom - top}, nil
}

func clamp(want, bounds events.Bbox) events.Bbox {
	left := max(want.Left, bounds.Left)
	top := max(want.Top, bounds.Top)
	right := min(want.Left+want.Width, bounds.Left+bounds.Width)
	bottom := min(want.Top+want.Height, bounds.Top+bounds.Height)
	if right < left {
		right = left
	}
	if bottom < top {
		bottom = top
	}
	return events.Bbox{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

type Screenshotter struct {
	layout LayoutFunc
}

func New(layout LayoutFunc) *Screenshotter {
	return &Screenshotter{layout: layout}
}

func (s *Screenshotter) Scope(ctx context.Context) (screenshotpkg.Session, error) {
	return &session{layout: s.layout}, nil
}

type session struct {
	layout LayoutFunc
}

func (s *session) CaptureWindow(ctx context.Context, w events.WindowInfo) (image.Image, error) {
	outputs, err := s.layout()
	if err != nil {
		return nil, errors.Wrap(err, "grim: query output layout")
	}
	bounds, err := layoutBounds(outputs)
	if err != nil {
		return nil, err
	}
	rect := clamp(w.Bbox, bounds)
	if rect.Width <= 0 || rect.Height <= 0 {
		return nil, errors.New("grim: clamped capture rect is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	geometry := formatGeometry(rect)
	cmd := exec.CommandContext(ctx, "grim", "-g", geometry, "-")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(err, "grim: run capture")
	}

	decoded, err := png.Decode(&stdout)
	if err != nil {
		return nil, errors.Wrap(err, "grim: decode png")
	}

	rgb := image.NewRGBA(decoded.Bounds())
	draw.Draw(rgb, rgb.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return rgb, nil
}

func (s *session) Close() error { return nil }

func formatGeometry(b events.Bbox) string {
	return fmt.Sprintf("%d,%d %dx%d", b.Left, b.Top, b.Width, b.Height)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ screenshotpkg.Screenshotter = (*Screenshotter)(nil)
