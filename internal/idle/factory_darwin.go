//go:build darwin && cgo

package idle

import (
	"github.com/clepsy/deskagent/internal/idle/darwinnative"
	"github.com/clepsy/deskagent/internal/platformprobe"
	"github.com/clepsy/deskagent/internal/workerpool"
)

func New(display platformprobe.DisplayServer, pool *workerpool.Pool) Detector {
	return darwinnative.New()
}
