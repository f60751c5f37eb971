package postgres

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

const progressColumns = `id, user_id, module_id, topic_id, status, progress_percentage, time_spent_minutes,
	started_at, completed_at, last_accessed_at, access_count, user_rating, notes, created_at, updated_at`

// The conflict target must repeat the partial index predicate for
// PostgreSQL to pick the partial unique index.
const progressUpsert = `
	INSERT INTO user_progress (` + progressColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT %s DO UPDATE SET
		status              = EXCLUDED.status,
		progress_percentage = EXCLUDED.progress_percentage,
		time_spent_minutes  = EXCLUDED.time_spent_minutes,
		started_at          = EXCLUDED.started_at,
		completed_at        = EXCLUDED.completed_at,
		last_accessed_at    = EXCLUDED.last_accessed_at,
		access_count        = EXCLUDED.access_count,
		user_rating         = EXCLUDED.user_rating,
		notes               = EXCLUDED.notes,
		updated_at          = EXCLUDED.updated_at
	RETURNING id, created_at
`

var (
	upsertByModule = fmt.Sprintf(progressUpsert, "(user_id, module_id) WHERE module_id IS NOT NULL")
	upsertByTopic  = fmt.Sprintf(progressUpsert, "(user_id, topic_id) WHERE topic_id IS NOT NULL")
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// GetByUserAndModule implements store.ProgressStore.GetByUserAndModule
func (s *PostgresProgressStore) GetByUserAndModule(
	ctx context.Context,
	userID, moduleID uuid.UUID,
) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 AND module_id = $2`
	return s.getOne(ctx, query, userID, moduleID)
}

// GetByUserAndTopic implements store.ProgressStore.GetByUserAndTopic
func (s *PostgresProgressStore) GetByUserAndTopic(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*domain.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 AND topic_id = $2`
	return s.getOne(ctx, query, userID, topicID)
}

func (s *PostgresProgressStore) getOne(
	ctx context.Context,
	query string,
	userID, targetID uuid.UUID,
) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, targetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no progress recorded yet",
				slog.String("user_id", userID.String()),
				slog.String("target_id", targetID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("target_id", targetID.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// Upsert implements store.ProgressStore.Upsert. On conflict the existing
// row keeps its ID and creation time; both are copied back into p.
func (s *PostgresProgressStore) Upsert(ctx context.Context, p *domain.UserProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return err
	}

	query := upsertByModule
	if p.TopicID != nil {
		query = upsertByTopic
	}

	err := s.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.ModuleID, p.TopicID, p.Status, p.ProgressPercentage, p.TimeSpentMinutes,
		p.StartedAt, p.CompletedAt, p.LastAccessedAt, p.AccessCount, p.UserRating, p.Notes,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("progress references missing user or content",
				slog.String("error", err.Error()),
				slog.String("user_id", p.UserID.String()))
			return fmt.Errorf("%w: user or content not found", store.ErrInvalidEntity)
		}
		log.Error("failed to upsert progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return MapError(err)
	}

	log.Debug("progress saved",
		slog.String("progress_id", p.ID.String()),
		slog.String("status", string(p.Status)),
		slog.Int("progress", p.ProgressPercentage))
	return nil
}

// ListByUser implements store.ProgressStore.ListByUser
func (s *PostgresProgressStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.UserProgress, error) {
	limit, offset = normalizePage(limit, offset)
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
		LIMIT $2 OFFSET $3
	`
	return queryAll(ctx, s.db, s.logger, "progress", scanProgress, query, userID, limit, offset)
}

// ListByUserAndStatus implements store.ProgressStore.ListByUserAndStatus
func (s *PostgresProgressStore) ListByUserAndStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.ProgressStatus,
) ([]*domain.UserProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress
		WHERE user_id = $1 AND status = $2
		ORDER BY updated_at DESC
	`
	return queryAll(ctx, s.db, s.logger, "progress", scanProgress, query, userID, status)
}

// ListRecentlyAccessed implements store.ProgressStore.ListRecentlyAccessed
func (s *PostgresProgressStore) ListRecentlyAccessed(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]*domain.UserProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress
		WHERE user_id = $1 AND last_accessed_at >= $2
		ORDER BY last_accessed_at DESC
	`
	return queryAll(ctx, s.db, s.logger, "progress", scanProgress, query, userID, since)
}

// ListModulesNeedingReview implements store.ProgressStore.ListModulesNeedingReview
func (s *PostgresProgressStore) ListModulesNeedingReview(
	ctx context.Context,
	userID uuid.UUID,
	before time.Time,
) ([]*domain.UserProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress
		WHERE user_id = $1
		  AND module_id IS NOT NULL
		  AND status = $2
		  AND last_accessed_at < $3
		ORDER BY last_accessed_at
	`
	return queryAll(ctx, s.db, s.logger, "progress", scanProgress, query, userID, domain.StatusCompleted, before)
}

// ListStale implements store.ProgressStore.ListStale
func (s *PostgresProgressStore) ListStale(ctx context.Context, before time.Time, limit int) ([]*domain.UserProgress, error) {
	limit, _ = normalizePage(limit, 0)
	query := `
		SELECT ` + progressColumns + `
		FROM user_progress
		WHERE status = $1 AND COALESCE(last_accessed_at, updated_at) < $2
		ORDER BY COALESCE(last_accessed_at, updated_at)
		LIMIT $3
	`
	return queryAll(ctx, s.db, s.logger, "progress", scanProgress, query, domain.StatusInProgress, before, limit)
}

// CountByUser implements store.ProgressStore.CountByUser
func (s *PostgresProgressStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return queryInt(ctx, s.db, `SELECT COUNT(*) FROM user_progress WHERE user_id = $1`, userID)
}

// CountByUserAndStatus implements store.ProgressStore.CountByUserAndStatus
func (s *PostgresProgressStore) CountByUserAndStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.ProgressStatus,
) (int, error) {
	return queryInt(ctx, s.db,
		`SELECT COUNT(*) FROM user_progress WHERE user_id = $1 AND status = $2`, userID, status)
}

// UserStatistics implements store.ProgressStore.UserStatistics
func (s *PostgresProgressStore) UserStatistics(ctx context.Context, userID uuid.UUID) (*store.UserProgressStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ($2, $3)),
			COUNT(*) FILTER (WHERE status = $4),
			COALESCE(AVG(progress_percentage), 0),
			COALESCE(SUM(time_spent_minutes), 0),
			COUNT(*) FILTER (WHERE module_id IS NOT NULL AND status IN ($2, $3)),
			COUNT(*) FILTER (WHERE topic_id IS NOT NULL AND status IN ($2, $3)),
			COALESCE(AVG(user_rating), 0)
		FROM user_progress
		WHERE user_id = $1
	`
	var st store.UserProgressStats
	err := s.db.QueryRowContext(ctx, query,
		userID, domain.StatusCompleted, domain.StatusMastered, domain.StatusInProgress,
	).Scan(
		&st.Total,
		&st.Completed,
		&st.InProgress,
		&st.AverageProgress,
		&st.TotalTimeMinutes,
		&st.ModulesCompleted,
		&st.TopicsCompleted,
		&st.AverageUserRating,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute user statistics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return &st, nil
}

// ModuleStatistics implements store.ProgressStore.ModuleStatistics
func (s *PostgresProgressStore) ModuleStatistics(
	ctx context.Context,
	moduleID uuid.UUID,
) (*store.ModuleProgressStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT user_id),
			COUNT(*) FILTER (WHERE status IN ($2, $3)),
			COALESCE(AVG(progress_percentage), 0),
			COALESCE(AVG(time_spent_minutes), 0)
		FROM user_progress
		WHERE module_id = $1
	`
	var st store.ModuleProgressStats
	err := s.db.QueryRowContext(ctx, query, moduleID, domain.StatusCompleted, domain.StatusMastered).Scan(
		&st.Learners,
		&st.Completed,
		&st.AverageProgress,
		&st.AverageTimeMinutes,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute module statistics",
			slog.String("error", err.Error()),
			slog.String("module_id", moduleID.String()))
		return nil, MapError(err)
	}
	return &st, nil
}

// WithTx implements store.ProgressStore.WithTx
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{db: tx, logger: s.logger}
}

func scanProgress(row rowScanner) (*domain.UserProgress, error) {
	var p domain.UserProgress
	var moduleID, topicID uuid.NullUUID
	var startedAt, completedAt, lastAccessedAt sql.NullTime
	var rating sql.NullInt64
	var status string
	err := row.Scan(
		&p.ID, &p.UserID, &moduleID, &topicID, &status, &p.ProgressPercentage, &p.TimeSpentMinutes,
		&startedAt, &completedAt, &lastAccessedAt, &p.AccessCount, &rating, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ModuleID = uuidPtr(moduleID)
	p.TopicID = uuidPtr(topicID)
	p.Status, _ = domain.ParseProgressStatus(status)
	p.StartedAt = timePtr(startedAt)
	p.CompletedAt = timePtr(completedAt)
	p.LastAccessedAt = timePtr(lastAccessedAt)
	p.UserRating = intPtr(rating)
	return &p, nil
}
