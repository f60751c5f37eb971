package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/academy-api/internal/domain"
)

// DefaultSweepTimeout bounds one sweep's database work.
const DefaultSweepTimeout = 30 * time.Second

// StaleSampleSize caps how many stale progress rows one sweep reads.
const StaleSampleSize = 100

// LoadCounter counts review work across all learners.
type LoadCounter interface {
	CountDue(ctx context.Context, now time.Time) (int, error)
	CountOverdue(ctx context.Context, before time.Time) (int, error)
}

// DueLister lists due schedules across learners, oldest first.
type DueLister interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.SpacedRepetitionSchedule, error)
}

// StaleLister lists in-progress rows nobody has touched since before.
type StaleLister interface {
	ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.UserProgress, error)
}

// LoadSink receives sweep results.
type LoadSink interface {
	SetReviewLoad(due, overdue int)
	SetBacklog(oldestDue time.Duration, stale int)
	SweepFailed()
}

// Load is the result of one sweep. OldestDue is zero when nothing is due.
type Load struct {
	Due       int
	Overdue   int
	OldestDue time.Duration
	Stale     int
}

// Sweeper measures the current review load.
type Sweeper struct {
	counter  LoadCounter
	sink     LoadSink
	grace    time.Duration
	due      DueLister
	stale    StaleLister
	staleAge time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// SweepOption configures a Sweeper.
type SweepOption func(*Sweeper)

// WithOldestDue makes each sweep report how long the oldest due review
// has been waiting.
func WithOldestDue(due DueLister) SweepOption {
	return func(s *Sweeper) { s.due = due }
}

// WithStaleProgress makes each sweep report in-progress rows untouched for
// longer than age.
func WithStaleProgress(stale StaleLister, age time.Duration) SweepOption {
	return func(s *Sweeper) {
		if age > 0 {
			s.stale, s.staleAge = stale, age
		}
	}
}

// NewSweeper creates a Sweeper. A schedule is overdue once it is more than
// grace past its review date.
func NewSweeper(
	counter LoadCounter,
	sink LoadSink,
	grace time.Duration,
	logger *slog.Logger,
	opts ...SweepOption,
) (*Sweeper, error) {
	if counter == nil {
		return nil, errors.New("load counter cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("load sink cannot be nil")
	}
	if grace < 0 {
		return nil, fmt.Errorf("overdue grace must not be negative, got %s", grace)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		counter: counter,
		sink:    sink,
		grace:   grace,
		timeout: DefaultSweepTimeout,
		logger:  logger.With(slog.String("component", "review_sweep")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sweep counts due and overdue schedules and reports them to the sink. A
// failed read is reported as a failed sweep and leaves the last published
// load in place.
func (s *Sweeper) Sweep(ctx context.Context) (Load, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	load, err := s.measure(ctx, s.now().UTC())
	if err != nil {
		s.sink.SweepFailed()
		return Load{}, err
	}

	s.sink.SetReviewLoad(load.Due, load.Overdue)
	s.sink.SetBacklog(load.OldestDue, load.Stale)
	s.logger.Debug("review sweep complete",
		slog.Int("due", load.Due),
		slog.Int("overdue", load.Overdue),
		slog.Duration("oldest_due", load.OldestDue),
		slog.Int("stale_progress", load.Stale))
	return load, nil
}

func (s *Sweeper) measure(ctx context.Context, now time.Time) (Load, error) {
	var load Load
	var err error

	if load.Due, err = s.counter.CountDue(ctx, now); err != nil {
		return Load{}, fmt.Errorf("failed to count due reviews: %w", err)
	}
	if load.Overdue, err = s.counter.CountOverdue(ctx, now.Add(-s.grace)); err != nil {
		return Load{}, fmt.Errorf("failed to count overdue reviews: %w", err)
	}

	if s.due != nil && load.Due > 0 {
		oldest, err := s.due.ListDue(ctx, now, 1)
		if err != nil {
			return Load{}, fmt.Errorf("failed to read oldest due review: %w", err)
		}
		if len(oldest) > 0 {
			load.OldestDue = now.Sub(oldest[0].NextReviewDate)
		}
	}

	if s.stale != nil {
		rows, err := s.stale.ListStale(ctx, now.Add(-s.staleAge), StaleSampleSize)
		if err != nil {
			return Load{}, fmt.Errorf("failed to list stale progress: %w", err)
		}
		load.Stale = len(rows)
		if len(rows) > 0 {
			s.logger.Info("stale progress found",
				slog.Int("rows", len(rows)),
				slog.String("oldest_user_id", rows[0].UserID.String()),
				slog.Duration("stale_after", s.staleAge))
		}
	}

	return load, nil
}
