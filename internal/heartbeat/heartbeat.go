// Package heartbeat implements the periodic liveness ping to the backend,
// grounded on heartbeat_sender_worker in the original implementation's
// main.py: a PUT every 30-60 seconds of jitter while paired, sharing
// AppHealth with the dispatcher. Requests go through the HTTP client passed
// to New; the dispatcher uses a client of its own.
package heartbeat

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/config"
	"github.com/clepsy/deskagent/internal/health"
)

var logger = log.New(log.Writer(), "heartbeat: ", log.LstdFlags)

const heartbeatPath = "/sources/source-heartbeats"

type Pinger struct {
	cfg    *config.Snapshot
	health *health.Store
	client *http.Client
}

func New(cfg *config.Snapshot, store *health.Store, client *http.Client) *Pinger {
	return &Pinger{cfg: cfg, health: store, client: client}
}

// Run pings the backend every 30+rand.Intn(30) seconds until ctx is
// canceled.
func (p *Pinger) Run(ctx context.Context) {
	for {
		jitter := time.Duration(30+rand.Intn(30)) * time.Second
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter):
		}
		p.ping(ctx)
	}
}

func (p *Pinger) ping(ctx context.Context) {
	cfg := p.cfg.Load()
	if !cfg.Pairing.Active {
		return
	}

	now := time.Now()
	if err := p.send(ctx, cfg); err != nil {
		logger.Printf("heartbeat failed: %v", err)
		p.health.RecordHeartbeat(now, health.StatusFail)
		return
	}
	p.health.RecordHeartbeat(now, health.StatusSuccess)
}

func (p *Pinger) send(ctx context.Context, cfg *config.Config) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, cfg.Pairing.BackendURL+heartbeatPath, nil)
	if err != nil {
		return errors.Wrap(err, "build heartbeat request")
	}
	req.Header.Set("Authorization", "Bearer "+cfg.Pairing.DeviceToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "perform heartbeat request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
