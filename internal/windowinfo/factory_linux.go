//go:build linux

package windowinfo

import (
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/windowinfo/hyprland"
	"github.com/clepsy/deskagent/internal/windowinfo/sway"
	"github.com/clepsy/deskagent/internal/windowinfo/unsupported"
	"github.com/clepsy/deskagent/internal/windowinfo/x11"
)

// New selects the Provider for the given (platform, display server,
// compositor) triple, per SPEC_FULL §4.2. Selection happens once at
// process startup and the chosen Provider is reused for the process
// lifetime.
func New(platform platformprobe.Platform, display platformprobe.DisplayServer, compositor platformprobe.Compositor) (Provider, error) {
	switch display {
	case platformprobe.DisplayServerX11:
		return x11.New()
	case platformprobe.DisplayServerWayland:
		switch compositor {
		case platformprobe.CompositorHyprland:
			return hyprland.New(), nil
		case platformprobe.CompositorSway:
			return sway.New(), nil
		default:
			return unsupported.New(), nil
		}
	default:
		return unsupported.New(), nil
	}
}
