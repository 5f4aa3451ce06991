package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cosmicwatch/neo-monitor-service/internal/observability"
)

// Scheduler drives the evaluator on a fixed interval. An immediate first
// cycle runs on Start; subsequent cycles tick until the context is cancelled.
type Scheduler struct {
	evaluator *Evaluator
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewScheduler creates a scheduler. Pass a nil clock to use real time.
func NewScheduler(evaluator *Evaluator, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		evaluator: evaluator,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start blocks until ctx is cancelled. A cycle that is in flight when ctx
// is cancelled runs to completion; only the loop stops.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("alert scheduler started", "interval", s.interval)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	s.run(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("alert scheduler stopping")
			return
		case <-ticker.Chan():
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	// Detach cancellation so that shutdown does not abort a cycle midway
	// through notifying users.
	if err := s.evaluator.RunCycle(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("alert cycle failed", "error", err)
	}
}
