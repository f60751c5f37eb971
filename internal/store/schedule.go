package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// RetentionStats aggregates a learner's review schedules.
type RetentionStats struct {
	Schedules         int     `json:"schedules"`
	AverageRetention  float64 `json:"average_retention"`
	MinRetention      int     `json:"min_retention"`
	MaxRetention      int     `json:"max_retention"`
	AverageEaseFactor float64 `json:"average_ease_factor"`
	TotalRepetitions  int     `json:"total_repetitions"`
	InterviewReady    int     `json:"interview_ready"`
}

// ScheduleStore defines the interface for spaced repetition schedule
// persistence. Schedules are never deleted.
//
// Every "due" query is inclusive: a schedule whose next review date equals
// now is due.
type ScheduleStore interface {
	// Create saves a new schedule.
	// Returns ErrDuplicate if the learner already has one for the content.
	Create(ctx context.Context, schedule *domain.SpacedRepetitionSchedule) error

	// GetByID retrieves a schedule by ID.
	// Returns ErrScheduleNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SpacedRepetitionSchedule, error)

	// GetByIDForUpdate retrieves a schedule and locks its row until the
	// surrounding transaction ends. Call it on a store bound with WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.SpacedRepetitionSchedule, error)

	// GetByContent retrieves the learner's schedule for one content item.
	// Returns ErrScheduleNotFound if none exists.
	GetByContent(
		ctx context.Context,
		userID, contentID uuid.UUID,
		contentType domain.ContentType,
	) (*domain.SpacedRepetitionSchedule, error)

	// Update writes the schedule only if its stored repetition count still
	// equals expectedCount. Returns ErrConflict otherwise.
	Update(ctx context.Context, schedule *domain.SpacedRepetitionSchedule, expectedCount int) error

	// RecordReviewEvent stores a review event.
	// Returns ErrReviewEventExists if the event ID was recorded before.
	RecordReviewEvent(ctx context.Context, event *domain.ReviewEvent) error

	// ListByUser returns the learner's schedules, soonest review first.
	ListByUser(
		ctx context.Context,
		userID uuid.UUID,
		limit, offset int,
	) ([]*domain.SpacedRepetitionSchedule, error)

	// ListDue returns schedules of any learner due at now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.SpacedRepetitionSchedule, error)

	// ListDueByUser returns the learner's schedules due at now.
	ListDueByUser(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.SpacedRepetitionSchedule, error)

	// ListOverdueByUser returns the learner's schedules whose review date is
	// before the cutoff.
	ListOverdueByUser(
		ctx context.Context,
		userID uuid.UUID,
		before time.Time,
	) ([]*domain.SpacedRepetitionSchedule, error)

	// ListPriorityDue returns the learner's interview-priority schedules due at now.
	ListPriorityDue(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
	) ([]*domain.SpacedRepetitionSchedule, error)

	// ListLowRetention returns the learner's reviewed schedules whose
	// retention score is below threshold.
	ListLowRetention(
		ctx context.Context,
		userID uuid.UUID,
		threshold int,
	) ([]*domain.SpacedRepetitionSchedule, error)

	// CountDue counts schedules of any learner due at now.
	CountDue(ctx context.Context, now time.Time) (int, error)

	// CountOverdue counts schedules of any learner due before the cutoff.
	CountOverdue(ctx context.Context, before time.Time) (int, error)

	// CountDueByUser counts the learner's schedules due at now.
	CountDueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)

	// CountOverdueByUser counts the learner's schedules due before the cutoff.
	CountOverdueByUser(ctx context.Context, userID uuid.UUID, before time.Time) (int, error)

	// RetentionStatistics aggregates the learner's schedules.
	RetentionStatistics(ctx context.Context, userID uuid.UUID) (*RetentionStats, error)

	// WithTx returns a new ScheduleStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ScheduleStore
}
