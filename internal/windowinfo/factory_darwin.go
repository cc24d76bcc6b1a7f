//go:build darwin && cgo

package windowinfo

import (
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/windowinfo/darwinnative"
)

// New returns the native macOS Provider.
func New(platform platformprobe.Platform, display platformprobe.DisplayServer, compositor platformprobe.Compositor) (Provider, error) {
	return darwinnative.New(), nil
}
