package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

// Target names the module or topic a progress record tracks.
type Target struct {
	ModuleID *uuid.UUID
	TopicID  *uuid.UUID
}

// ModuleTarget targets a module.
func ModuleTarget(id uuid.UUID) Target { return Target{ModuleID: &id} }

// TopicTarget targets a topic.
func TopicTarget(id uuid.UUID) Target { return Target{TopicID: &id} }

func (t Target) valid() bool {
	return (t.ModuleID == nil) != (t.TopicID == nil)
}

// Activity is one study session reported by a learner. Nil fields are left
// unchanged.
type Activity struct {
	Target
	ProgressPercentage *int
	TimeSpentMinutes   int
	Rating             *int
	Notes              *string
	Complete           bool
}

// ProgressService records learner progress. Every write reads the current
// row, applies the change and upserts inside one transaction.
type ProgressService struct {
	tx       store.Transactor
	progress store.ProgressStore
	content  store.ContentStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewProgressService creates a ProgressService.
func NewProgressService(
	tx store.Transactor,
	progress store.ProgressStore,
	content store.ContentStore,
	logger *slog.Logger,
) (*ProgressService, error) {
	if tx == nil || progress == nil || content == nil {
		return nil, &ServiceError{Service: "progress", Op: "create_service", Err: errors.New("dependencies cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		tx:       tx,
		progress: progress,
		content:  content,
		logger:   logger.With(slog.String("component", "progress_service")),
		now:      time.Now,
	}, nil
}

func (s *ProgressService) bind(tx *sql.Tx) (store.ProgressStore, store.ContentStore) {
	if tx == nil {
		return s.progress, s.content
	}
	return s.progress.WithTx(tx), s.content.WithTx(tx)
}

// RecordActivity applies a study session and returns the saved record.
func (s *ProgressService) RecordActivity(
	ctx context.Context,
	userID uuid.UUID,
	a Activity,
) (*domain.UserProgress, error) {
	if !a.Target.valid() {
		return nil, domain.ErrProgressTarget
	}
	if a.TimeSpentMinutes < 0 {
		return nil, domain.ErrNegativeTimeSpent
	}
	return s.mutate(ctx, "record_activity", userID, a.Target, func(p *domain.UserProgress, now time.Time) error {
		p.MarkStarted(now)
		if a.ProgressPercentage != nil {
			p.UpdateProgress(*a.ProgressPercentage, now)
		}
		if a.Complete {
			p.MarkCompleted(now)
		}
		p.AddTimeSpent(a.TimeSpentMinutes)
		if a.Notes != nil {
			p.Notes = *a.Notes
		}
		if a.Rating != nil {
			if err := p.Rate(*a.Rating); err != nil {
				return err
			}
		}
		return nil
	})
}

// Complete marks the target finished.
func (s *ProgressService) Complete(ctx context.Context, userID uuid.UUID, t Target) (*domain.UserProgress, error) {
	return s.mutate(ctx, "complete", userID, t, func(p *domain.UserProgress, now time.Time) error {
		p.MarkCompleted(now)
		return nil
	})
}

// Rate stores the learner's 1 to 5 rating of the target.
func (s *ProgressService) Rate(
	ctx context.Context,
	userID uuid.UUID,
	t Target,
	rating int,
) (*domain.UserProgress, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}
	return s.mutate(ctx, "rate", userID, t, func(p *domain.UserProgress, _ time.Time) error {
		return p.Rate(rating)
	})
}

func (s *ProgressService) mutate(
	ctx context.Context,
	op string,
	userID uuid.UUID,
	t Target,
	apply func(*domain.UserProgress, time.Time) error,
) (*domain.UserProgress, error) {
	if !t.valid() {
		return nil, domain.ErrProgressTarget
	}
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	var saved *domain.UserProgress
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		progress, content := s.bind(tx)

		if err := ensureContent(ctx, content, t); err != nil {
			return err
		}
		p, err := load(ctx, progress, userID, t)
		if err != nil {
			return err
		}
		if err := apply(p, now); err != nil {
			return err
		}
		p.Touch(now)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := progress.Upsert(ctx, p); err != nil {
			return err
		}
		saved = p
		return nil
	})
	if err != nil {
		if !domain.IsValidationError(err) && !errors.Is(err, ErrContentNotFound) {
			log.Error("failed to save progress",
				slog.String("op", op),
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		return nil, NewServiceError("progress", op, err)
	}

	log.Debug("progress saved",
		slog.String("op", op),
		slog.String("user_id", userID.String()),
		slog.String("status", string(saved.Status)),
		slog.Int("progress", saved.ProgressPercentage))
	return saved, nil
}

// Get returns the learner's progress. A learner without a row gets a fresh
// NOT_STARTED record that is not persisted.
func (s *ProgressService) Get(ctx context.Context, userID uuid.UUID, t Target) (*domain.UserProgress, error) {
	if !t.valid() {
		return nil, domain.ErrProgressTarget
	}
	if err := ensureContent(ctx, s.content, t); err != nil {
		return nil, NewServiceError("progress", "get", err)
	}
	p, err := load(ctx, s.progress, userID, t)
	if err != nil {
		return nil, NewServiceError("progress", "get", err)
	}
	return p, nil
}

// List returns one page of the learner's progress, most recent first.
func (s *ProgressService) List(
	ctx context.Context,
	userID uuid.UUID,
	page Page,
) ([]*domain.UserProgress, PageInfo, error) {
	rows, err := s.progress.ListByUser(ctx, userID, page.Size, page.Offset())
	if err != nil {
		return nil, PageInfo{}, NewServiceError("progress", "list", err)
	}
	total, err := s.progress.CountByUser(ctx, userID)
	if err != nil {
		return nil, PageInfo{}, NewServiceError("progress", "list", err)
	}
	return rows, page.Info(total), nil
}

// ListByStatus returns the learner's rows in one status.
func (s *ProgressService) ListByStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.ProgressStatus,
) ([]*domain.UserProgress, error) {
	rows, err := s.progress.ListByUserAndStatus(ctx, userID, status)
	if err != nil {
		return nil, NewServiceError("progress", "list_by_status", err)
	}
	return rows, nil
}

// RecentlyActive returns rows the learner touched within the active learning window.
func (s *ProgressService) RecentlyActive(ctx context.Context, userID uuid.UUID) ([]*domain.UserProgress, error) {
	since := s.now().UTC().Add(-domain.ActiveLearningWindow)
	rows, err := s.progress.ListRecentlyAccessed(ctx, userID, since)
	if err != nil {
		return nil, NewServiceError("progress", "recently_active", err)
	}
	return rows, nil
}

// ModulesNeedingReview returns completed modules not visited for olderThan.
func (s *ProgressService) ModulesNeedingReview(
	ctx context.Context,
	userID uuid.UUID,
	olderThan time.Duration,
) ([]*domain.UserProgress, error) {
	rows, err := s.progress.ListModulesNeedingReview(ctx, userID, s.now().UTC().Add(-olderThan))
	if err != nil {
		return nil, NewServiceError("progress", "needing_review", err)
	}
	return rows, nil
}

// Statistics aggregates the learner's progress.
func (s *ProgressService) Statistics(ctx context.Context, userID uuid.UUID) (*store.UserProgressStats, error) {
	stats, err := s.progress.UserStatistics(ctx, userID)
	if err != nil {
		return nil, NewServiceError("progress", "statistics", err)
	}
	return stats, nil
}

// ModuleStatistics aggregates every learner's progress on a module.
func (s *ProgressService) ModuleStatistics(
	ctx context.Context,
	moduleID uuid.UUID,
) (*store.ModuleProgressStats, error) {
	if err := ensureContent(ctx, s.content, ModuleTarget(moduleID)); err != nil {
		return nil, NewServiceError("progress", "module_statistics", err)
	}
	stats, err := s.progress.ModuleStatistics(ctx, moduleID)
	if err != nil {
		return nil, NewServiceError("progress", "module_statistics", err)
	}
	return stats, nil
}

func ensureContent(ctx context.Context, content store.ContentStore, t Target) error {
	var err error
	if t.ModuleID != nil {
		_, err = content.GetModule(ctx, *t.ModuleID)
	} else {
		_, err = content.GetTopic(ctx, *t.TopicID)
	}
	if store.IsNotFoundError(err) {
		return fmt.Errorf("%w: %w", ErrContentNotFound, err)
	}
	return err
}

func load(ctx context.Context, progress store.ProgressStore, userID uuid.UUID, t Target) (*domain.UserProgress, error) {
	var (
		p   *domain.UserProgress
		err error
	)
	if t.ModuleID != nil {
		p, err = progress.GetByUserAndModule(ctx, userID, *t.ModuleID)
	} else {
		p, err = progress.GetByUserAndTopic(ctx, userID, *t.TopicID)
	}
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, store.ErrProgressNotFound):
		if t.ModuleID != nil {
			return domain.NewModuleProgress(userID, *t.ModuleID), nil
		}
		return domain.NewTopicProgress(userID, *t.TopicID), nil
	default:
		return nil, err
	}
}
