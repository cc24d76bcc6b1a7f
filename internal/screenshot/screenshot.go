// Package screenshot provides the screen-capture abstraction. A
// Screenshotter is scoped into a Session for the process lifetime
// (mirroring the original implementation's ScreenshotterBase context
// manager), and a Session captures the rectangle behind a given window.
package screenshot

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
)

// ErrUnsupportedScreenshot is returned when no capture backend works on
// the current platform/compositor.
var ErrUnsupportedScreenshot = errors.New("screenshot: unsupported platform")

type Screenshotter interface {
	Scope(ctx context.Context) (Session, error)
}

type Session interface {
	// CaptureWindow returns an RGB image covering w's bbox, clamped to
	// whatever geometry the backend can actually address.
	CaptureWindow(ctx context.Context, w events.WindowInfo) (image.Image, error)

	Close() error
}
