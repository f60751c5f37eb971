package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

const competencyColumns = `id, user_id, current_level, target_level, competency_gaps,
	leadership_principles_progress, technical_competencies, behavioral_competencies,
	progression_timeline, interview_readiness_score, cultural_fit_score, last_assessed,
	created_at, updated_at`

// PostgresCompetencyStore implements the store.CompetencyStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCompetencyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCompetencyStore creates a new PostgreSQL implementation of the CompetencyStore interface.
func NewPostgresCompetencyStore(db store.DBTX, logger *slog.Logger) *PostgresCompetencyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCompetencyStore{
		db:     db,
		logger: logger.With(slog.String("component", "competency_store")),
	}
}

// Ensure PostgresCompetencyStore implements store.CompetencyStore interface
var _ store.CompetencyStore = (*PostgresCompetencyStore)(nil)

// GetByUser implements store.CompetencyStore.GetByUser
func (s *PostgresCompetencyStore) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.CompetencyProgression, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + competencyColumns + ` FROM competency_progressions WHERE user_id = $1`
	c, err := scanCompetency(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCompetencyNotFound
		}
		log.Error("failed to get competency progression",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	return c, nil
}

// Upsert implements store.CompetencyStore.Upsert
func (s *PostgresCompetencyStore) Upsert(ctx context.Context, c *domain.CompetencyProgression) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		log.Warn("competency progression validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", c.UserID.String()))
		return err
	}

	query := `
		INSERT INTO competency_progressions (` + competencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT ON CONSTRAINT competency_progressions_user_key DO UPDATE SET
			current_level                  = EXCLUDED.current_level,
			target_level                   = EXCLUDED.target_level,
			competency_gaps                = EXCLUDED.competency_gaps,
			leadership_principles_progress = EXCLUDED.leadership_principles_progress,
			technical_competencies         = EXCLUDED.technical_competencies,
			behavioral_competencies        = EXCLUDED.behavioral_competencies,
			progression_timeline           = EXCLUDED.progression_timeline,
			interview_readiness_score      = EXCLUDED.interview_readiness_score,
			cultural_fit_score             = EXCLUDED.cultural_fit_score,
			last_assessed                  = EXCLUDED.last_assessed,
			updated_at                     = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.CurrentLevel, c.TargetLevel, c.CompetencyGaps,
		c.LeadershipPrinciplesProgress, c.TechnicalCompetencies, c.BehavioralCompetencies,
		c.ProgressionTimeline, c.InterviewReadinessScore, c.CulturalFitScore, c.LastAssessed,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		log.Error("failed to upsert competency progression",
			slog.String("error", err.Error()),
			slog.String("user_id", c.UserID.String()))
		return MapError(err)
	}

	log.Info("competency progression saved",
		slog.String("user_id", c.UserID.String()),
		slog.String("level", string(c.CurrentLevel)),
		slog.Int("interview_readiness", c.InterviewReadinessScore),
		slog.Int("cultural_fit", c.CulturalFitScore))
	return nil
}

// ListReadyForPromotion implements store.CompetencyStore.ListReadyForPromotion.
// One clause per level below L6, each checking the bar of the level above.
func (s *PostgresCompetencyStore) ListReadyForPromotion(
	ctx context.Context,
	limit int,
) ([]*domain.CompetencyProgression, error) {
	limit, _ = normalizePage(limit, 0)

	var clauses []string
	var args []any
	for _, from := range []domain.CompetencyLevel{domain.LevelL3, domain.LevelL4, domain.LevelL5} {
		bar := domain.PromotionBars[from.Next()]
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(current_level = $%d AND interview_readiness_score >= $%d AND cultural_fit_score >= $%d)",
			n+1, n+2, n+3))
		args = append(args, from, bar.InterviewReadiness, bar.CulturalFit)
	}
	args = append(args, limit)

	query := `
		SELECT ` + competencyColumns + `
		FROM competency_progressions
		WHERE ` + strings.Join(clauses, " OR ") + `
		ORDER BY interview_readiness_score + cultural_fit_score DESC
		LIMIT $` + fmt.Sprint(len(args))
	return queryAll(ctx, s.db, s.logger, "competency_progression", scanCompetency, query, args...)
}

// CountByHiringBand implements store.CompetencyStore.CountByHiringBand.
// Bands are tested strongest first, mirroring CompetencyProgression.HiringBand.
func (s *PostgresCompetencyStore) CountByHiringBand(ctx context.Context) (map[domain.HiringBand]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var whens []string
	var args []any
	for _, hb := range domain.HiringBars {
		n := len(args)
		whens = append(whens, fmt.Sprintf(
			"WHEN interview_readiness_score >= $%d AND cultural_fit_score >= $%d THEN $%d::text",
			n+1, n+2, n+3))
		args = append(args, hb.Bar.InterviewReadiness, hb.Bar.CulturalFit, string(hb.Band))
	}
	args = append(args, string(domain.HiringBelow))

	query := `
		SELECT band, COUNT(*)
		FROM (
			SELECT CASE ` + strings.Join(whens, " ") + ` ELSE $` + fmt.Sprint(len(args)) + `::text END AS band
			FROM competency_progressions
		) banded
		GROUP BY band
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to count hiring bands", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	counts := map[domain.HiringBand]int{domain.HiringBelow: 0}
	for _, hb := range domain.HiringBars {
		counts[hb.Band] = 0
	}
	for rows.Next() {
		var band string
		var n int
		if err := rows.Scan(&band, &n); err != nil {
			return nil, err
		}
		counts[domain.HiringBand(band)] = n
	}
	return counts, rows.Err()
}

// WithTx implements store.CompetencyStore.WithTx
func (s *PostgresCompetencyStore) WithTx(tx *sql.Tx) store.CompetencyStore {
	return &PostgresCompetencyStore{db: tx, logger: s.logger}
}

func scanCompetency(row rowScanner) (*domain.CompetencyProgression, error) {
	var c domain.CompetencyProgression
	var current, target string
	var lastAssessed sql.NullTime
	err := row.Scan(
		&c.ID, &c.UserID, &current, &target, &c.CompetencyGaps,
		&c.LeadershipPrinciplesProgress, &c.TechnicalCompetencies, &c.BehavioralCompetencies,
		&c.ProgressionTimeline, &c.InterviewReadinessScore, &c.CulturalFitScore, &lastAssessed,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CurrentLevel, _ = domain.ParseCompetencyLevel(current)
	c.TargetLevel, _ = domain.ParseCompetencyLevel(target)
	c.LastAssessed = timePtr(lastAssessed)
	return &c, nil
}
