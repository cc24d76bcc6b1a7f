// Package scheduler implements the CaptureScheduler state machine: the
// cooldown/AFK/relevance decision logic ported from data_generator_worker
// in the original implementation's data_generator.py.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/clepsy/deskagent/internal/config"
	"github.com/clepsy/deskagent/internal/events"
	"github.com/clepsy/deskagent/internal/idle"
	"github.com/clepsy/deskagent/internal/relevance"
	"github.com/clepsy/deskagent/internal/screenshot"
	"github.com/clepsy/deskagent/internal/windowinfo"
)

var logger = log.New(log.Writer(), "scheduler: ", log.LstdFlags)

// pairingPollInterval is the cadence at which the scheduler re-checks
// whether pairing has completed; distinct from the active-window poll
// interval since there's nothing useful to do before pairing finishes.
const pairingPollInterval = 2 * time.Second

// Clock abstracts time.Now so cooldown logic can be driven deterministically
// in tests.
type Clock func() time.Time

// Scheduler runs the capture decision loop as a single goroutine.
type Scheduler struct {
	cfg      *config.Snapshot
	provider windowinfo.Provider
	idleDet  idle.Detector
	shotter  screenshot.Screenshotter
	out      chan<- events.Event
	clock    Clock

	st state

	lastWindowMu sync.RWMutex
	lastWindow   events.WindowInfo
	haveWindow   bool
}

// LastWindow returns the most recently observed active window, for the
// status API to report.
func (s *Scheduler) LastWindow() (events.WindowInfo, bool) {
	s.lastWindowMu.RLock()
	defer s.lastWindowMu.RUnlock()
	return s.lastWindow, s.haveWindow
}

func (s *Scheduler) setLastWindow(w events.WindowInfo) {
	s.lastWindowMu.Lock()
	defer s.lastWindowMu.Unlock()
	s.lastWindow = w
	s.haveWindow = true
}

type state struct {
	afkLatched      bool
	bootstrapped    bool
	lastCaptureTime time.Time
	lastWindowHash  string
	lastChangeTime  time.Time
	seen            *seenMap
}

func New(cfg *config.Snapshot, provider windowinfo.Provider, idleDet idle.Detector, shotter screenshot.Screenshotter, out chan<- events.Event) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		provider: provider,
		idleDet:  idleDet,
		shotter:  shotter,
		out:      out,
		clock:    time.Now,
		st:       state{seen: newSeenMap()},
	}
}

// Run drives the scheduler until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	idleSession, err := s.idleDet.Scope(ctx)
	if err != nil {
		return errors.Wrap(err, "scheduler: acquire idle session")
	}
	defer idleSession.Close()

	shotSession, err := s.shotter.Scope(ctx)
	if err != nil {
		return errors.Wrap(err, "scheduler: acquire screenshot session")
	}
	defer shotSession.Close()

	for {
		cfg := s.cfg.Load()

		if !cfg.Pairing.Active {
			if err := sleepCtx(ctx, pairingPollInterval); err != nil {
				return nil
			}
			continue
		}

		idleSeconds, err := idleSession.IdleSeconds(ctx)
		if err != nil {
			logger.Printf("idle query failed: %v", err)
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		now := s.clock()
		decision := s.decide(cfg, now, time.Duration(idleSeconds*float64(time.Second)))

		if decision.emitAfk {
			s.out <- events.AfkStart{
				ID:                        uuid.New().String(),
				Timestamp:                 now,
				TimeSinceLastUserActivity: time.Duration(idleSeconds * float64(time.Second)),
			}
		}

		if decision.skipCapture {
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		wi, monitors, err := s.provider.ActiveWindow(ctx, 3, 50*time.Millisecond)
		if err != nil {
			logger.Printf("active window query failed: %v", err)
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		s.setLastWindow(*wi)

		if !relevance.IsRelevant(*wi, monitors) {
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		hash := windowHash(*wi)
		fire := s.shouldCapture(cfg, now, hash)
		if !fire {
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		img, err := shotSession.CaptureWindow(ctx, *wi)
		if err != nil {
			logger.Printf("screenshot capture failed: %v", err)
			if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
				return nil
			}
			continue
		}

		s.out <- events.DesktopCheck{
			ID:                        uuid.New().String(),
			Screenshot:                img,
			ActiveWindow:              *wi,
			Timestamp:                 now,
			TimeSinceLastUserActivity: time.Duration(idleSeconds * float64(time.Second)),
			Bbox:                      wi.Bbox,
		}
		s.st.lastCaptureTime = now
		s.st.seen.Set(hash, now.UnixNano())

		if err := sleepCtx(ctx, cfg.Timing.ActiveWindowPollInterval); err != nil {
			return nil
		}
	}
}

type tickDecision struct {
	emitAfk     bool
	skipCapture bool
}

// decide handles the AFK latch and returns whether this tick should go on
// to query the active window at all.
func (s *Scheduler) decide(cfg *config.Config, now time.Time, idle time.Duration) tickDecision {
	if idle >= cfg.Timing.AfkTimeout {
		emit := !s.st.afkLatched
		s.st.afkLatched = true
		return tickDecision{emitAfk: emit, skipCapture: true}
	}

	wasLatched := s.st.afkLatched
	s.st.afkLatched = false
	if wasLatched {
		// Coming back from AFK is treated like a fresh focus change: force
		// the next relevant window through Rule A by resetting the change
		// clock to now.
		s.st.lastChangeTime = now
	}

	if now.Sub(s.st.lastCaptureTime) < cfg.Timing.GlobalCooldown && !s.st.lastCaptureTime.IsZero() {
		return tickDecision{skipCapture: true}
	}

	return tickDecision{}
}

// shouldCapture implements the same-window cooldown suppression, Rule A
// (focus-change burst), and Rule B (constant-window heartbeat), in that
// order, matching data_generator_worker's same-window check preceding its
// Rule A/B if/elif. Open question resolution: Rule A fires whenever
// lastChangeTime was within GlobalCooldown, regardless of whether hash
// changed this exact tick.
func (s *Scheduler) shouldCapture(cfg *config.Config, now time.Time, hash string) bool {
	if !s.st.bootstrapped {
		s.st.bootstrapped = true
		s.st.lastWindowHash = hash
		s.st.lastChangeTime = now
		return true
	}

	if hash != s.st.lastWindowHash {
		s.st.lastWindowHash = hash
		s.st.lastChangeTime = now
	}

	if lastSeenNanos, ok := s.st.seen.Get(hash); ok {
		lastSeen := time.Unix(0, lastSeenNanos)
		if now.Sub(lastSeen) < cfg.Timing.SameWindowCooldown {
			return false
		}
	}

	if now.Sub(s.st.lastChangeTime) < cfg.Timing.GlobalCooldown {
		return true // Rule A: focus-change burst
	}

	if now.Sub(s.st.lastCaptureTime) >= cfg.Timing.ConstantWindowCooldown {
		return true // Rule B: constant-window heartbeat, against the global last-shot clock
	}

	return false
}

func windowHash(w events.WindowInfo) string {
	return fmt.Sprintf("%s\x00%s\x00%d,%d,%d,%d", w.AppName, w.Title, w.Bbox.Left, w.Bbox.Top, w.Bbox.Width, w.Bbox.Height)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
