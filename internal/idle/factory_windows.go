//go:build windows

package idle

import (
	"github.com/clepsy/deskagent/internal/idle/winnative"
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/workerpool"
)

func New(display platformprobe.DisplayServer, pool *workerpool.Pool) Detector {
	return winnative.New()
}
