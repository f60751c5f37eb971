package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

const scheduleColumns = `id, user_id, content_id, content_type, repetition_interval, ease_factor,
	repetition_count, last_reviewed, next_review_date, retention_score, amazon_interview_priority,
	difficulty_adjustment, created_at, updated_at`

var scheduleUniqueConstraints = map[string]error{
	"spaced_repetition_schedules_content_key": store.ErrDuplicate,
}

// PostgresScheduleStore implements the store.ScheduleStore interface
// using a PostgreSQL database as the storage backend.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScheduleStore creates a new PostgreSQL implementation of the ScheduleStore interface.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// Ensure PostgresScheduleStore implements store.ScheduleStore interface
var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

// Create implements store.ScheduleStore.Create
func (s *PostgresScheduleStore) Create(ctx context.Context, schedule *domain.SpacedRepetitionSchedule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during creation",
			slog.String("error", err.Error()),
			slog.String("user_id", schedule.UserID.String()))
		return err
	}

	query := `
		INSERT INTO spaced_repetition_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		schedule.ID, schedule.UserID, schedule.ContentID, schedule.ContentType,
		schedule.RepetitionInterval, schedule.EaseFactor, schedule.RepetitionCount,
		schedule.LastReviewed, schedule.NextReviewDate, schedule.RetentionScore,
		schedule.AmazonInterviewPriority, schedule.DifficultyAdjustment,
		schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("schedule already exists",
				slog.String("user_id", schedule.UserID.String()),
				slog.String("content_id", schedule.ContentID.String()))
			return MapUniqueViolation(err, scheduleUniqueConstraints)
		}
		log.Error("failed to create schedule",
			slog.String("error", err.Error()),
			slog.String("user_id", schedule.UserID.String()))
		return MapError(err)
	}

	log.Info("schedule created",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("content_type", string(schedule.ContentType)),
		slog.Time("next_review_date", schedule.NextReviewDate))
	return nil
}

// GetByID implements store.ScheduleStore.GetByID
func (s *PostgresScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SpacedRepetitionSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM spaced_repetition_schedules WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByIDForUpdate implements store.ScheduleStore.GetByIDForUpdate
func (s *PostgresScheduleStore) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.SpacedRepetitionSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM spaced_repetition_schedules WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

// GetByContent implements store.ScheduleStore.GetByContent
func (s *PostgresScheduleStore) GetByContent(
	ctx context.Context,
	userID, contentID uuid.UUID,
	contentType domain.ContentType,
) (*domain.SpacedRepetitionSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1 AND content_id = $2 AND content_type = $3
	`
	return s.getOne(ctx, query, userID, contentID, contentType)
}

func (s *PostgresScheduleStore) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*domain.SpacedRepetitionSchedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("schedule not found")
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to get schedule", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return schedule, nil
}

// Update implements store.ScheduleStore.Update. The repetition count acts as
// a version: a concurrent review that already advanced it makes this write
// affect no rows.
func (s *PostgresScheduleStore) Update(
	ctx context.Context,
	schedule *domain.SpacedRepetitionSchedule,
	expectedCount int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("schedule_id", schedule.ID.String()))
		return err
	}

	query := `
		UPDATE spaced_repetition_schedules
		SET repetition_interval = $1,
			ease_factor = $2,
			repetition_count = $3,
			last_reviewed = $4,
			next_review_date = $5,
			retention_score = $6,
			amazon_interview_priority = $7,
			difficulty_adjustment = $8,
			updated_at = $9
		WHERE id = $10 AND repetition_count = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		schedule.RepetitionInterval, schedule.EaseFactor, schedule.RepetitionCount,
		schedule.LastReviewed, schedule.NextReviewDate, schedule.RetentionScore,
		schedule.AmazonInterviewPriority, schedule.DifficultyAdjustment, schedule.UpdatedAt,
		schedule.ID, expectedCount,
	)
	if err != nil {
		log.Error("failed to update schedule",
			slog.String("error", err.Error()),
			slog.String("schedule_id", schedule.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		log.Warn("schedule changed since it was read",
			slog.String("schedule_id", schedule.ID.String()),
			slog.Int("expected_count", expectedCount))
		return store.ErrConflict
	}

	log.Debug("schedule updated",
		slog.String("schedule_id", schedule.ID.String()),
		slog.Int("interval", schedule.RepetitionInterval),
		slog.Time("next_review_date", schedule.NextReviewDate))
	return nil
}

// RecordReviewEvent implements store.ScheduleStore.RecordReviewEvent.
// A replayed event ID inserts nothing, which leaves the surrounding
// transaction usable.
func (s *PostgresScheduleStore) RecordReviewEvent(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO review_events (id, schedule_id, user_id, quality, reviewed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query,
		event.ID, event.ScheduleID, event.UserID, int(event.Quality), event.ReviewedAt)
	if err != nil {
		log.Error("failed to record review event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		log.Info("review event replayed", slog.String("event_id", event.ID.String()))
		return store.ErrReviewEventExists
	}
	return nil
}

// ListByUser implements store.ScheduleStore.ListByUser
func (s *PostgresScheduleStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1
		ORDER BY next_review_date, id
		LIMIT $2 OFFSET $3
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, userID, limit, offset)
}

// ListDue implements store.ScheduleStore.ListDue
func (s *PostgresScheduleStore) ListDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	limit, _ = normalizePage(limit, 0)
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE next_review_date <= $1
		ORDER BY next_review_date
		LIMIT $2
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, now, limit)
}

// ListDueByUser implements store.ScheduleStore.ListDueByUser. Priority items
// come first within the same review date.
func (s *PostgresScheduleStore) ListDueByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	limit, _ = normalizePage(limit, 0)
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1 AND next_review_date <= $2
		ORDER BY next_review_date, amazon_interview_priority DESC
		LIMIT $3
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, userID, now, limit)
}

// ListOverdueByUser implements store.ScheduleStore.ListOverdueByUser
func (s *PostgresScheduleStore) ListOverdueByUser(
	ctx context.Context,
	userID uuid.UUID,
	before time.Time,
) ([]*domain.SpacedRepetitionSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1 AND next_review_date < $2
		ORDER BY next_review_date
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, userID, before)
}

// ListPriorityDue implements store.ScheduleStore.ListPriorityDue
func (s *PostgresScheduleStore) ListPriorityDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.SpacedRepetitionSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1 AND amazon_interview_priority AND next_review_date <= $2
		ORDER BY next_review_date
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, userID, now)
}

// ListLowRetention implements store.ScheduleStore.ListLowRetention
func (s *PostgresScheduleStore) ListLowRetention(
	ctx context.Context,
	userID uuid.UUID,
	threshold int,
) ([]*domain.SpacedRepetitionSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM spaced_repetition_schedules
		WHERE user_id = $1 AND last_reviewed IS NOT NULL AND retention_score < $2
		ORDER BY retention_score
	`
	return queryAll(ctx, s.db, s.logger, "schedule", scanSchedule, query, userID, threshold)
}

// CountDue implements store.ScheduleStore.CountDue
func (s *PostgresScheduleStore) CountDue(ctx context.Context, now time.Time) (int, error) {
	return queryInt(ctx, s.db,
		`SELECT COUNT(*) FROM spaced_repetition_schedules WHERE next_review_date <= $1`, now)
}

// CountOverdue implements store.ScheduleStore.CountOverdue
func (s *PostgresScheduleStore) CountOverdue(ctx context.Context, before time.Time) (int, error) {
	return queryInt(ctx, s.db,
		`SELECT COUNT(*) FROM spaced_repetition_schedules WHERE next_review_date < $1`, before)
}

// CountDueByUser implements store.ScheduleStore.CountDueByUser
func (s *PostgresScheduleStore) CountDueByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	return queryInt(ctx, s.db,
		`SELECT COUNT(*) FROM spaced_repetition_schedules WHERE user_id = $1 AND next_review_date <= $2`,
		userID, now)
}

// CountOverdueByUser implements store.ScheduleStore.CountOverdueByUser
func (s *PostgresScheduleStore) CountOverdueByUser(
	ctx context.Context,
	userID uuid.UUID,
	before time.Time,
) (int, error) {
	return queryInt(ctx, s.db,
		`SELECT COUNT(*) FROM spaced_repetition_schedules WHERE user_id = $1 AND next_review_date < $2`,
		userID, before)
}

// RetentionStatistics implements store.ScheduleStore.RetentionStatistics
func (s *PostgresScheduleStore) RetentionStatistics(
	ctx context.Context,
	userID uuid.UUID,
) (*store.RetentionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(AVG(retention_score), 0),
			COALESCE(MIN(retention_score), 0),
			COALESCE(MAX(retention_score), 0),
			COALESCE(AVG(ease_factor), 0),
			COALESCE(SUM(repetition_count), 0),
			COUNT(*) FILTER (
				WHERE amazon_interview_priority
				  AND retention_score >= $2
				  AND repetition_count >= $3
				  AND ease_factor >= $4
			)
		FROM spaced_repetition_schedules
		WHERE user_id = $1
	`
	var st store.RetentionStats
	err := s.db.QueryRowContext(ctx, query,
		userID,
		domain.InterviewReadyRetention,
		domain.InterviewReadyRepetitions,
		domain.InterviewReadyEaseFactor,
	).Scan(
		&st.Schedules,
		&st.AverageRetention,
		&st.MinRetention,
		&st.MaxRetention,
		&st.AverageEaseFactor,
		&st.TotalRepetitions,
		&st.InterviewReady,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute retention statistics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return &st, nil
}

// WithTx implements store.ScheduleStore.WithTx
func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &PostgresScheduleStore{db: tx, logger: s.logger}
}

func scanSchedule(row rowScanner) (*domain.SpacedRepetitionSchedule, error) {
	var sc domain.SpacedRepetitionSchedule
	var contentType string
	var lastReviewed sql.NullTime
	err := row.Scan(
		&sc.ID, &sc.UserID, &sc.ContentID, &contentType, &sc.RepetitionInterval, &sc.EaseFactor,
		&sc.RepetitionCount, &lastReviewed, &sc.NextReviewDate, &sc.RetentionScore,
		&sc.AmazonInterviewPriority, &sc.DifficultyAdjustment, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sc.ContentType, _ = domain.ParseContentType(contentType)
	sc.LastReviewed = timePtr(lastReviewed)
	sc.NextReviewDate = sc.NextReviewDate.UTC()
	return &sc, nil
}
