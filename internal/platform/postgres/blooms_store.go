package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

const bloomsColumns = `id, user_id, content_id, remember_score, understand_score, apply_score,
	analyze_score, evaluate_score, create_score, current_level, competency_alignment,
	progression_evidence, next_level_requirements, created_at, updated_at`

// currentLevelScore picks the score column matching current_level.
const currentLevelScore = `
	CASE current_level
		WHEN 'REMEMBER'   THEN remember_score
		WHEN 'UNDERSTAND' THEN understand_score
		WHEN 'APPLY'      THEN apply_score
		WHEN 'ANALYZE'    THEN analyze_score
		WHEN 'EVALUATE'   THEN evaluate_score
		WHEN 'CREATE'     THEN create_score
	END`

// PostgresBloomsStore implements the store.BloomsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBloomsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBloomsStore creates a new PostgreSQL implementation of the BloomsStore interface.
func NewPostgresBloomsStore(db store.DBTX, logger *slog.Logger) *PostgresBloomsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBloomsStore{
		db:     db,
		logger: logger.With(slog.String("component", "blooms_store")),
	}
}

// Ensure PostgresBloomsStore implements store.BloomsStore interface
var _ store.BloomsStore = (*PostgresBloomsStore)(nil)

// Get implements store.BloomsStore.Get
func (s *PostgresBloomsStore) Get(
	ctx context.Context,
	userID, contentID uuid.UUID,
) (*domain.BloomsTaxonomyProgression, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + bloomsColumns + ` FROM blooms_progressions WHERE user_id = $1 AND content_id = $2`
	p, err := scanBlooms(s.db.QueryRowContext(ctx, query, userID, contentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBloomsNotFound
		}
		log.Error("failed to get bloom's progression",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("content_id", contentID.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// Upsert implements store.BloomsStore.Upsert
func (s *PostgresBloomsStore) Upsert(ctx context.Context, p *domain.BloomsTaxonomyProgression) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p.SyncAlignment()
	if err := p.Validate(); err != nil {
		log.Warn("bloom's progression validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return err
	}

	query := `
		INSERT INTO blooms_progressions (` + bloomsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT ON CONSTRAINT blooms_progressions_content_key DO UPDATE SET
			remember_score          = EXCLUDED.remember_score,
			understand_score        = EXCLUDED.understand_score,
			apply_score             = EXCLUDED.apply_score,
			analyze_score           = EXCLUDED.analyze_score,
			evaluate_score          = EXCLUDED.evaluate_score,
			create_score            = EXCLUDED.create_score,
			current_level           = EXCLUDED.current_level,
			competency_alignment    = EXCLUDED.competency_alignment,
			progression_evidence    = EXCLUDED.progression_evidence,
			next_level_requirements = EXCLUDED.next_level_requirements,
			updated_at              = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.ContentID,
		p.RememberScore, p.UnderstandScore, p.ApplyScore,
		p.AnalyzeScore, p.EvaluateScore, p.CreateScore,
		p.CurrentLevel, p.CompetencyAlignment, p.ProgressionEvidence, p.NextLevelRequirements,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		log.Error("failed to upsert bloom's progression",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()))
		return MapError(err)
	}

	log.Debug("bloom's progression saved",
		slog.String("progression_id", p.ID.String()),
		slog.String("level", string(p.CurrentLevel)))
	return nil
}

// ListByUser implements store.BloomsStore.ListByUser
func (s *PostgresBloomsStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.BloomsTaxonomyProgression, error) {
	query := `SELECT ` + bloomsColumns + ` FROM blooms_progressions WHERE user_id = $1 ORDER BY updated_at DESC`
	return queryAll(ctx, s.db, s.logger, "blooms_progression", scanBlooms, query, userID)
}

// ListReadyToAdvance implements store.BloomsStore.ListReadyToAdvance
func (s *PostgresBloomsStore) ListReadyToAdvance(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.BloomsTaxonomyProgression, error) {
	query := `
		SELECT ` + bloomsColumns + `
		FROM blooms_progressions
		WHERE user_id = $1 AND ` + currentLevelScore + ` >= $2
		ORDER BY updated_at DESC
	`
	return queryAll(ctx, s.db, s.logger, "blooms_progression", scanBlooms, query,
		userID, domain.AdvancementThreshold)
}

// LevelDistribution implements store.BloomsStore.LevelDistribution
func (s *PostgresBloomsStore) LevelDistribution(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.BloomsLevel]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT current_level, COUNT(*) FROM blooms_progressions WHERE user_id = $1 GROUP BY current_level`,
		userID)
	if err != nil {
		log.Error("failed to compute level distribution",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	dist := make(map[domain.BloomsLevel]int, len(domain.BloomsLevels))
	for _, l := range domain.BloomsLevels {
		dist[l] = 0
	}
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		l, _ := domain.ParseBloomsLevel(level)
		dist[l] += n
	}
	return dist, rows.Err()
}

// WithTx implements store.BloomsStore.WithTx
func (s *PostgresBloomsStore) WithTx(tx *sql.Tx) store.BloomsStore {
	return &PostgresBloomsStore{db: tx, logger: s.logger}
}

func scanBlooms(row rowScanner) (*domain.BloomsTaxonomyProgression, error) {
	var p domain.BloomsTaxonomyProgression
	var level string
	err := row.Scan(
		&p.ID, &p.UserID, &p.ContentID,
		&p.RememberScore, &p.UnderstandScore, &p.ApplyScore,
		&p.AnalyzeScore, &p.EvaluateScore, &p.CreateScore,
		&level, &p.CompetencyAlignment, &p.ProgressionEvidence, &p.NextLevelRequirements,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CurrentLevel, _ = domain.ParseBloomsLevel(level)
	return &p, nil
}
