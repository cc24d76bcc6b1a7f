// Package unsupported provides a windowinfo.Provider stub for compositors
// the agent has no native backend for.
package unsupported

import (
	"context"
	"time"

	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) ActiveWindow(ctx context.Context, retries int, cooldown time.Duration) (*events.WindowInfo, []events.Bbox, error) {
	return nil, nil, windowinfo.ErrUnsupportedCompositor
}

func (p *Provider) Close() error { return nil }
