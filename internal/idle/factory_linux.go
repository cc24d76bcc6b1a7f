//go:build linux

package idle

import (
	"github.com/clepsy/deskagent/internal/idle/wayland"
	x11detector "github.com/clepsy/deskagent/internal/idle/x11"
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/workerpool"
)

// New selects the Detector for the given display server. The X11 backend
// needs a worker pool to offload its blocking round trip; callers share
// one pool across the process per SPEC_FULL §5.
func New(display platformprobe.DisplayServer, pool *workerpool.Pool) Detector {
	switch display {
	case platformprobe.DisplayServerX11:
		return x11detector.New(pool)
	case platformprobe.DisplayServerWayland:
		return wayland.New()
	default:
		return wayland.New()
	}
}
