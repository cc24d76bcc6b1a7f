//go:build darwin && cgo

// Package darwinnative implements idle.Detector via
// CGEventSourceSecondsSinceLastEventType, a synchronous local call so
// IsAsync reports false.
package darwinnative

/*
#cgo darwin LDFLAGS: -framework ApplicationServices -framework CoreGraphics
#import <ApplicationServices/ApplicationServices.h>

static double secondsSinceLastEvent() {
	return CGEventSourceSecondsSinceLastEventType(kCGEventSourceStateCombinedSessionState, kCGAnyInputEventType);
}
*/
import "C"

import (
	"context"

	"github.com/clepsy/deskagent/internal/idle"
)

type Detector struct{}

func New() *Detector { return &Detector{} }

func (d *Detector) IsAsync() bool { return false }

func (d *Detector) Scope(ctx context.Context) (idle.Session, error) {
	return &session{}, nil
}

type session struct{}

func (s *session) IdleSeconds(ctx context.Context) (float64, error) {
	return float64(C.secondsSinceLastEvent()), nil
}

func (s *session) Close() error { return nil }

var _ idle.Detector = (*Detector)(nil)
