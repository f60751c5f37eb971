package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/phrazzld/academy-api/internal/redact"
)

// Scheduler runs the review sweep on a fixed interval.
type Scheduler struct {
	cron     *gocron.Scheduler
	sweeper  *Sweeper
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Scheduler. Nothing runs until Start.
func New(sweeper *Sweeper, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("sweeper cannot be nil")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()

	return &Scheduler{
		cron:     cron,
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.With(slog.String("component", "scheduler")),
	}, nil
}

// Start registers the sweep and starts it in the background. The first
// sweep runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(s.interval).Tag("review_sweep").Do(s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule review sweep: %w", err)
	}
	s.cron.StartAsync()
	s.logger.Info("scheduler started", slog.Duration("sweep_interval", s.interval))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return s.cron.Len()
}

func (s *Scheduler) runSweep() {
	if _, err := s.sweeper.Sweep(context.Background()); err != nil {
		s.logger.Error("review sweep failed", redact.ErrorAttr(err))
	}
}
