// Package zero provides an idle.Detector fallback for platforms with no
// native idle-query mechanism wired; it always reports zero idle time,
// matching the original implementation's final cascade fallback.
package zero

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

func (s *session) IdleSeconds(ctx context.Context) (float64, error) { return 0, nil }
func (s *session) Close() error                                     { return nil }

var _ idle.Detector = (*Detector)(nil)
