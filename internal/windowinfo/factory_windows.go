//go:build windows

package windowinfo

import (
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/windowinfo/winnative"
)

// New returns the native Windows Provider; platform/display/compositor are
// accepted for signature symmetry with the Linux factory but are always
// (Windows, native, -) on this build.
func New(platform platformprobe.Platform, display platformprobe.DisplayServer, compositor platformprobe.Compositor) (Provider, error) {
	return winnative.New(), nil
}
