// Package windowinfo provides the active-window query abstraction:
// Provider implementations read the focused window's title, app name and
// geometry from whatever mechanism the current platform/display-server
// offers. Generalizes the teacher's pkg/window.Detector interface and
// pkg/detector factory selection into the single backend the spec calls
// for per (Platform, DisplayServer, Compositor) triple.
package windowinfo

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/events"
)

// ErrUnsupportedCompositor is returned by backends that cannot operate on
// the detected compositor (e.g. a Wayland compositor other than Hyprland
// or Sway).
var ErrUnsupportedCompositor = errors.New("windowinfo: unsupported compositor")

// Provider is the active-window query abstraction. A single Provider is
// selected once at startup by New and reused for the process lifetime.
type Provider interface {
	// ActiveWindow returns the currently focused window and the absolute
	// bboxes of every connected monitor. It retries up to retries times,
	// sleeping cooldown between attempts, since some backends
	// (xgb round trips, hyprctl/swaymsg subprocesses) occasionally race
	// with a window manager update.
	ActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (*events.WindowInfo, []events.Bbox, error)

	// Close releases any resources (connections, subprocess handles) the
	// provider holds.
	Close() error
}
