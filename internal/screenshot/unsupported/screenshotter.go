// Package unsupported provides a screenshot.Screenshotter stub for
// platforms with no working capture backend.
package unsupported

import (
	"context"
	"image"

	"github.com/clepsy/deskagent/internal/events"
	screenshotpkg "github.com/clepsy/deskagent/internal/screenshot"
)

type Screenshotter struct{}

func New() *Screenshotter { return &Screenshotter{} }

func (s *Screenshotter) Scope(ctx context.Context) (screenshotpkg.Session, error) {
	return nil, screenshotpkg.ErrUnsupportedScreenshot
}

type session struct{}

func (s *session) CaptureWindow(ctx context.Context, w events.WindowInfo) (image.Image, error) {
	return nil, screenshotpkg.ErrUnsupportedScreenshot
}

func (s *session) Close() error { return nil }

var _ screenshotpkg.Screenshotter = (*Screenshotter)(nil)
