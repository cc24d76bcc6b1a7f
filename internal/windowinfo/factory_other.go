//go:build (darwin && !cgo) || (!linux && !windows && !darwin)

package windowinfo

import (
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/windowinfo/unsupported"
)

// New returns the unsupported stub on platforms without a native backend
// (cgo disabled on macOS, or an unrecognized GOOS).
func New(platform platformprobe.Platform, display platformprobe.DisplayServer, compositor platformprobe.Compositor) (Provider, error) {
	return unsupported.New(), nil
}
