// Package scheduler drives the periodic expiry sweep.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is the unit of work run on every tick.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (released int, err error)
}

// Scheduler invokes a Sweeper at a fixed interval until the context is
// cancelled. One sweep runs at a time; a slow sweep simply delays the
// next tick rather than stacking up.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.Logger
}

func New(sweeper Sweeper, interval time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{sweeper: sweeper, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. An immediate sweep happens on
// start so a restart does not leave expired holds sitting for a full
// interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	released, err := s.sweeper.Sweep(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if released > 0 {
		s.log.Info("expiry sweep released reservations", zap.Int("released", released))
	}
}
