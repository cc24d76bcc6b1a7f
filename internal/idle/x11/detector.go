// Package x11 implements idle.Detector via the X11 screensaver extension,
// matching X11IdleDetector in the original implementation's
// idle_detector.py, which dispatched the same XScreenSaverQueryInfo call
// onto a worker thread so the async caller never blocked on the X11 round
// trip. Here that's internal/workerpool instead of asyncio.to_thread.
package x11

import (
	"context"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/idle"
	"github.com/clepsy/deskagent/internal/workerpool"
)

type Detector struct {
	pool *workerpool.Pool
}

// New wraps a shared worker pool; the caller owns the pool's lifecycle.
func New(pool *workerpool.Pool) *Detector {
	return &Detector{pool: pool}
}

func (d *Detector) IsAsync() bool { return true }

func (d *Detector) Scope(ctx context.Context) (idle.Session, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "idle/x11: connect")
	}
	if err := screensaver.Init(conn); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "idle/x11: init screensaver extension")
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &session{conn: conn, root: root, pool: d.pool}, nil
}

type session struct {
	conn *xgb.Conn
	root xproto.Window
	pool *workerpool.Pool
}

func (s *session) IdleSeconds(ctx context.Context) (float64, error) {
	ms, err := workerpool.Submit(ctx, s.pool, func() (uint32, error) {
		reply, err := screensaver.QueryInfo(s.conn, xproto.Drawable(s.root)).Reply()
		if err != nil {
			return 0, err
		}
		return reply.MsSinceUserInput, nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "idle/x11: query screensaver info")
	}
	return float64(ms) / 1000.0, nil
}

func (s *session) Close() error {
	s.conn.Close()
	return nil
}

var _ idle.Detector = (*Detector)(nil)
