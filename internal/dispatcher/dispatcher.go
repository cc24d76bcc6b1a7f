// Package dispatcher consumes scheduler-produced events and posts them to
// the aggregation backend, grounded on request_sender_worker in the
// original implementation's sender.py: a single serial consumer, a
// pairing check per item, a bearer header built from the current config
// snapshot, and AppHealth updated on every attempt.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"log"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/config"
	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/health"
)

var logger = log.New(log.Writer(), "dispatcher: ", log.LstdFlags)

const (
	desktopCheckPath = "/sources/aggregator/desktop/screenshot-input"
	afkStartPath     = "/sources/aggregator/desktop/afk-input"
	requestTimeout   = 15 * time.Second
)

// Dispatcher drains a single event channel serially, in submission order,
// matching the spec's FIFO delivery guarantee.
type Dispatcher struct {
	cfg    *config.Snapshot
	health *health.Store
	client *http.Client

	bufPool sync.Pool
}

func New(cfg *config.Snapshot, store *health.Store) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		health: store,
		client: &http.Client{Timeout: requestTimeout},
		bufPool: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Run consumes in until ctx is canceled or in is closed.
func (d *Dispatcher) Run(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			d.dispatch(ctx, ev)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, ev events.Event) {
	cfg := d.cfg.Load()
	if !cfg.Pairing.Active {
		return
	}

	var err error
	switch e := ev.(type) {
	case events.DesktopCheck:
		err = d.sendDesktopCheck(ctx, cfg, e)
	case events.AfkStart:
		err = d.sendAfkStart(ctx, cfg, e)
	default:
		err = errors.Errorf("dispatcher: unknown event type %T", ev)
	}

	now := time.Now()
	if err != nil {
		logger.Printf("dispatch failed: %v", err)
		d.health.RecordDataSent(now, health.StatusFail)
		return
	}
	d.health.RecordDataSent(now, health.StatusSuccess)
}

func (d *Dispatcher) sendDesktopCheck(ctx context.Context, cfg *config.Config, e events.DesktopCheck) error {
	buf := d.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer d.bufPool.Put(buf)

	if err := png.Encode(buf, e.Screenshot); err != nil {
		return errors.Wrap(err, "encode screenshot png")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("screenshot", e.ID+".png")
	if err != nil {
		return errors.Wrap(err, "create multipart file field")
	}
	if _, err := part.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "write screenshot bytes")
	}

	data := map[string]any{
		"active_window": map[string]any{
			"title":    e.ActiveWindow.Title,
			"app_name": e.ActiveWindow.AppName,
			"bbox": map[string]any{
				"left":   e.Bbox.Left,
				"top":    e.Bbox.Top,
				"width":  e.Bbox.Width,
				"height": e.Bbox.Height,
			},
			"monitor_names": e.ActiveWindow.MonitorNames,
		},
		"timestamp":                     e.Timestamp.Format(time.RFC3339Nano),
		"time_since_last_user_activity": e.TimeSinceLastUserActivity.Seconds(),
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "marshal desktop check metadata")
	}
	if err := writer.WriteField("data", string(dataJSON)); err != nil {
		return errors.Wrap(err, "write data field")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Pairing.BackendURL+desktopCheckPath, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cfg.Pairing.DeviceToken)

	return d.do(req)
}

func (d *Dispatcher) sendAfkStart(ctx context.Context, cfg *config.Config, e events.AfkStart) error {
	payload := map[string]any{
		"id":                            e.ID,
		"timestamp":                     e.Timestamp.Format(time.RFC3339Nano),
		"time_since_last_user_activity": e.TimeSinceLastUserActivity.Seconds(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal afk start")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Pairing.BackendURL+afkStartPath, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.Pairing.DeviceToken)

	return d.do(req)
}

func (d *Dispatcher) do(req *http.Request) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}
