package screenshot

import (
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/screenshot/grim"
	"github.com/clepsy/deskagent/internal/screenshot/mss"
	"github.com/clepsy/deskagent/internal/screenshot/unsupported"
)

// New selects the Screenshotter for the given display server/compositor,
// matching create_screenshotter() in the original implementation's
// screenshotter.py: grim for wlroots Wayland compositors, the unsupported
// stub for other Wayland compositors, and mss (here, kbinani/screenshot)
// for every non-Wayland display server.
func New(display platformprobe.DisplayServer, compositor platformprobe.Compositor) Screenshotter {
	if display != platformprobe.DisplayServerWayland {
		return mss.New()
	}
	switch compositor {
	case platformprobe.CompositorHyprland:
		return grim.New(grim.HyprlandLayout)
	case platformprobe.CompositorSway:
		return grim.New(grim.SwayLayout)
	default:
		return unsupported.New()
	}
}
