// Package review schedules spaced repetition reviews and applies answers.
package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/domain/srs"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/store"
)

// DefaultDueLimit caps how many due schedules one call returns.
const DefaultDueLimit = 50

// Submission is one answered review. EventID is chosen by the client and
// makes retries safe.
type Submission struct {
	EventID uuid.UUID
	Quality domain.ReviewQuality
}

// Result is the schedule after a submission.
type Result struct {
	Schedule *domain.SpacedRepetitionSchedule `json:"schedule"`
	// Replayed is true when the event was already recorded and the schedule
	// was returned unchanged.
	Replayed bool `json:"replayed"`
}

// Stats summarises a learner's review load and retention.
type Stats struct {
	store.RetentionStats
	Due          int `json:"due"`
	Overdue      int `json:"overdue"`
	LowRetention int `json:"low_retention"`
}

// Service owns the review lifecycle of spaced repetition schedules.
type Service struct {
	tx        store.Transactor
	schedules store.ScheduleStore
	srs       srs.Service
	grace     time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithOverdueGrace sets how long past due a schedule may be before it is overdue.
func WithOverdueGrace(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a review Service.
func NewService(
	tx store.Transactor,
	schedules store.ScheduleStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if schedules == nil {
		panic("schedules cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		tx:        tx,
		schedules: schedules,
		srs:       srsService,
		grace:     domain.DefaultOverdueGrace,
		logger:    logger.With(slog.String("component", "review_service")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule starts reviewing a content item. Calling it again for the same
// item returns the existing schedule; created reports which happened.
func (s *Service) Schedule(
	ctx context.Context,
	userID, contentID uuid.UUID,
	contentType domain.ContentType,
	priority bool,
) (sched *domain.SpacedRepetitionSchedule, created bool, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.schedules.GetByContent(ctx, userID, contentID, contentType)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, store.ErrScheduleNotFound):
		return nil, false, service.NewServiceError("review", "schedule", err)
	}

	sched, err = domain.NewSpacedRepetitionSchedule(userID, contentID, contentType, priority, s.now())
	if err != nil {
		return nil, false, err
	}
	if err := s.schedules.Create(ctx, sched); err != nil {
		// Lost a race with a concurrent first exposure.
		if errors.Is(err, store.ErrDuplicate) {
			existing, getErr := s.schedules.GetByContent(ctx, userID, contentID, contentType)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, service.NewServiceError("review", "schedule", err)
	}

	log.Debug("review scheduled",
		slog.String("user_id", userID.String()),
		slog.String("content_id", contentID.String()),
		slog.String("content_type", string(contentType)),
		slog.Time("next_review_date", sched.NextReviewDate))
	return sched, true, nil
}

// SubmitReview applies a graded answer. The schedule row is locked for the
// duration of the transaction and the event ID is recorded first, so a
// retried submission is counted once.
func (s *Service) SubmitReview(
	ctx context.Context,
	userID, scheduleID uuid.UUID,
	sub Submission,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !sub.Quality.Valid() {
		return nil, domain.ErrInvalidReviewQuality
	}
	now := s.now().UTC()
	event, err := domain.NewReviewEvent(sub.EventID, scheduleID, userID, sub.Quality, now)
	if err != nil {
		return nil, err
	}

	var res Result
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		schedules := s.bind(tx)

		current, err := s.lockOwned(ctx, schedules, userID, scheduleID)
		if err != nil {
			return err
		}

		if err := schedules.RecordReviewEvent(ctx, event); err != nil {
			if errors.Is(err, store.ErrReviewEventExists) {
				res = Result{Schedule: current, Replayed: true}
				return nil
			}
			return fmt.Errorf("failed to record review event: %w", err)
		}

		next, err := s.srs.CalculateNextReview(current, sub.Quality, now)
		if err != nil {
			return fmt.Errorf("failed to calculate next review: %w", err)
		}
		if err := schedules.Update(ctx, next, current.RepetitionCount); err != nil {
			return fmt.Errorf("failed to update schedule: %w", err)
		}
		res = Result{Schedule: next}
		return nil
	})
	if err != nil {
		if !errors.Is(err, service.ErrNotOwned) && !errors.Is(err, store.ErrScheduleNotFound) {
			log.Error("failed to submit review",
				slog.String("user_id", userID.String()),
				slog.String("schedule_id", scheduleID.String()),
				slog.String("error", err.Error()))
		}
		return nil, service.NewServiceError("review", "submit", err)
	}

	if res.Replayed {
		log.Info("review event replayed",
			slog.String("event_id", sub.EventID.String()),
			slog.String("schedule_id", scheduleID.String()))
	} else {
		log.Debug("review submitted",
			slog.String("schedule_id", scheduleID.String()),
			slog.Int("quality", int(sub.Quality)),
			slog.Int("interval", res.Schedule.RepetitionInterval),
			slog.Float64("ease_factor", res.Schedule.EaseFactor),
			slog.Time("next_review_date", res.Schedule.NextReviewDate))
	}
	return &res, nil
}

// Postpone pushes the next review back by days. Nothing else changes.
func (s *Service) Postpone(
	ctx context.Context,
	userID, scheduleID uuid.UUID,
	days int,
) (*domain.SpacedRepetitionSchedule, error) {
	if days < 1 {
		return nil, srs.ErrInvalidDays
	}
	now := s.now().UTC()

	var out *domain.SpacedRepetitionSchedule
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		schedules := s.bind(tx)
		current, err := s.lockOwned(ctx, schedules, userID, scheduleID)
		if err != nil {
			return err
		}
		next, err := s.srs.PostponeReview(current, days, now)
		if err != nil {
			return err
		}
		if err := schedules.Update(ctx, next, current.RepetitionCount); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, service.NewServiceError("review", "postpone", err)
	}
	return out, nil
}

// Get returns one of the learner's schedules.
func (s *Service) Get(ctx context.Context, userID, scheduleID uuid.UUID) (*domain.SpacedRepetitionSchedule, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, service.NewServiceError("review", "get", err)
	}
	if sched.UserID != userID {
		return nil, service.ErrNotOwned
	}
	return sched, nil
}

// List returns a page of the learner's schedules, soonest first.
func (s *Service) List(
	ctx context.Context,
	userID uuid.UUID,
	page service.Page,
) ([]*domain.SpacedRepetitionSchedule, error) {
	rows, err := s.schedules.ListByUser(ctx, userID, page.Size, page.Offset())
	if err != nil {
		return nil, service.NewServiceError("review", "list", err)
	}
	return rows, nil
}

// Due returns the learner's schedules due now, at most limit of them.
// A review date equal to now is due.
func (s *Service) Due(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SpacedRepetitionSchedule, error) {
	if limit <= 0 || limit > DefaultDueLimit {
		limit = DefaultDueLimit
	}
	rows, err := s.schedules.ListDueByUser(ctx, userID, s.now().UTC(), limit)
	if err != nil {
		return nil, service.NewServiceError("review", "due", err)
	}
	return rows, nil
}

// Overdue returns the learner's schedules more than the grace period past due.
func (s *Service) Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	rows, err := s.schedules.ListOverdueByUser(ctx, userID, s.overdueCutoff())
	if err != nil {
		return nil, service.NewServiceError("review", "overdue", err)
	}
	return rows, nil
}

// PriorityDue returns the learner's interview priority schedules due now.
func (s *Service) PriorityDue(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	rows, err := s.schedules.ListPriorityDue(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, service.NewServiceError("review", "priority_due", err)
	}
	return rows, nil
}

// LowRetention returns reviewed schedules below the low retention threshold.
func (s *Service) LowRetention(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error) {
	rows, err := s.schedules.ListLowRetention(ctx, userID, domain.LowRetentionThreshold)
	if err != nil {
		return nil, service.NewServiceError("review", "low_retention", err)
	}
	return rows, nil
}

// Statistics summarises the learner's review load and retention.
func (s *Service) Statistics(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	now := s.now().UTC()
	retention, err := s.schedules.RetentionStatistics(ctx, userID)
	if err != nil {
		return nil, service.NewServiceError("review", "statistics", err)
	}
	due, err := s.schedules.CountDueByUser(ctx, userID, now)
	if err != nil {
		return nil, service.NewServiceError("review", "statistics", err)
	}
	overdue, err := s.schedules.CountOverdueByUser(ctx, userID, s.overdueCutoff())
	if err != nil {
		return nil, service.NewServiceError("review", "statistics", err)
	}
	low, err := s.schedules.ListLowRetention(ctx, userID, domain.LowRetentionThreshold)
	if err != nil {
		return nil, service.NewServiceError("review", "statistics", err)
	}
	return &Stats{RetentionStats: *retention, Due: due, Overdue: overdue, LowRetention: len(low)}, nil
}

func (s *Service) overdueCutoff() time.Time {
	return s.now().UTC().Add(-s.grace)
}

func (s *Service) bind(tx *sql.Tx) store.ScheduleStore {
	if tx == nil {
		return s.schedules
	}
	return s.schedules.WithTx(tx)
}

func (s *Service) lockOwned(
	ctx context.Context,
	schedules store.ScheduleStore,
	userID, scheduleID uuid.UUID,
) (*domain.SpacedRepetitionSchedule, error) {
	sched, err := schedules.GetByIDForUpdate(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched.UserID != userID {
		logger.FromContextOrDefault(ctx, s.logger).Warn("schedule not owned by user",
			slog.String("user_id", userID.String()),
			slog.String("schedule_id", scheduleID.String()))
		return nil, service.ErrNotOwned
	}
	return sched, nil
}
