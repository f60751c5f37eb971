package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// UserProgressStats aggregates one learner's progress rows.
type UserProgressStats struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	InProgress        int     `json:"in_progress"`
	AverageProgress   float64 `json:"average_progress"`
	TotalTimeMinutes  int     `json:"total_time_minutes"`
	ModulesCompleted  int     `json:"modules_completed"`
	TopicsCompleted   int     `json:"topics_completed"`
	AverageUserRating float64 `json:"average_user_rating"`
}

// ModuleProgressStats aggregates all learners' progress on one module.
type ModuleProgressStats struct {
	Learners           int     `json:"learners"`
	Completed          int     `json:"completed"`
	AverageProgress    float64 `json:"average_progress"`
	AverageTimeMinutes float64 `json:"average_time_minutes"`
}

// ProgressStore defines the interface for learner progress persistence.
// It holds no mutation logic; callers compute status and percentage.
type ProgressStore interface {
	// GetByUserAndModule returns the learner's progress on a module.
	// Returns ErrProgressNotFound when the learner has none yet.
	GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.UserProgress, error)

	// GetByUserAndTopic returns the learner's progress on a topic.
	// Returns ErrProgressNotFound when the learner has none yet.
	GetByUserAndTopic(ctx context.Context, userID, topicID uuid.UUID) (*domain.UserProgress, error)

	// Upsert inserts the record or, when the learner already has a row for
	// the same module or topic, overwrites it. At most one row exists per
	// (user, module) and per (user, topic).
	Upsert(ctx context.Context, progress *domain.UserProgress) error

	// ListByUser returns the learner's rows, most recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.UserProgress, error)

	// ListByUserAndStatus returns the learner's rows in one status.
	ListByUserAndStatus(
		ctx context.Context,
		userID uuid.UUID,
		status domain.ProgressStatus,
	) ([]*domain.UserProgress, error)

	// ListRecentlyAccessed returns rows accessed at or after since.
	ListRecentlyAccessed(ctx context.Context, userID uuid.UUID, since time.Time) ([]*domain.UserProgress, error)

	// ListModulesNeedingReview returns completed module rows last accessed
	// before the cutoff.
	ListModulesNeedingReview(ctx context.Context, userID uuid.UUID, before time.Time) ([]*domain.UserProgress, error)

	// ListStale returns in-progress rows of any learner not touched since before.
	ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.UserProgress, error)

	// CountByUser returns the number of rows the learner has.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// CountByUserAndStatus returns the number of the learner's rows in one status.
	CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) (int, error)

	// UserStatistics aggregates the learner's rows.
	UserStatistics(ctx context.Context, userID uuid.UUID) (*UserProgressStats, error)

	// ModuleStatistics aggregates every learner's row for a module.
	ModuleStatistics(ctx context.Context, moduleID uuid.UUID) (*ModuleProgressStats, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
