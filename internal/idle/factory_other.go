//go:build (darwin && !cgo) || (!linux && !windows && !darwin)

package idle

import (
	"github.com/clepsy/deskagent/internal/idle/zero"
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/workerpool"
)

func New(display platformprobe.DisplayServer, pool *workerpool.Pool) Detector {
	return zero.New()
}
