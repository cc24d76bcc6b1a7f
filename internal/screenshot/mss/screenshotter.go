// Package mss implements screenshot.Screenshotter via
// github.com/kbinani/screenshot, the Go analogue of the Python original's
// mss-based MssScreenshotter, used for Win32/Cocoa/X11/unknown-Linux.
package mss

import (
	"context"
	"image"

	"github.com/kbinani/screenshot"
	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
	screenshotpkg "github.com/clepsy/deskagent/internal/screenshot"
)

type Screenshotter struct{}

func New() *Screenshotter { return &Screenshotter{} }

func (s *Screenshotter) Scope(ctx context.Context) (screenshotpkg.Session, error) {
	return &session{}, nil
}

type session struct{}

func (s *session) CaptureWindow(ctx context.Context, w events.WindowInfo) (image.Image, error) {
	rect := image.Rect(w.Bbox.Left, w.Bbox.Top, w.Bbox.Left+w.Bbox.Width, w.Bbox.Top+w.Bbox.Height)
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, errors.Wrap(err, "mss: capture rect")
	}
	return img, nil
}

func (s *session) Close() error { return nil }

var _ screenshotpkg.Screenshotter = (*Screenshotter)(nil)
