package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
)

// BloomsStore persists per-content Bloom's taxonomy progressions.
type BloomsStore interface {
	// Get returns the learner's progression for a content item.
	// Returns ErrBloomsNotFound if none exists.
	Get(ctx context.Context, userID, contentID uuid.UUID) (*domain.BloomsTaxonomyProgression, error)

	// Upsert inserts or replaces the learner's progression for the content
	// item. The competency alignment is recomputed before writing.
	Upsert(ctx context.Context, progression *domain.BloomsTaxonomyProgression) error

	// ListByUser returns all of the learner's progressions.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.BloomsTaxonomyProgression, error)

	// ListReadyToAdvance returns progressions whose current level score
	// reaches domain.AdvancementThreshold.
	ListReadyToAdvance(ctx context.Context, userID uuid.UUID) ([]*domain.BloomsTaxonomyProgression, error)

	// LevelDistribution counts the learner's progressions per current level.
	LevelDistribution(ctx context.Context, userID uuid.UUID) (map[domain.BloomsLevel]int, error)

	// WithTx returns a new BloomsStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) BloomsStore
}

// CompetencyStore persists each learner's engineering level progression.
// Queries read their score bars from the domain threshold table.
type CompetencyStore interface {
	// GetByUser returns the learner's progression.
	// Returns ErrCompetencyNotFound if none exists.
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.CompetencyProgression, error)

	// Upsert inserts or replaces the learner's progression.
	Upsert(ctx context.Context, progression *domain.CompetencyProgression) error

	// ListReadyForPromotion returns progressions that clear the promotion
	// bar of the level above their current one.
	ListReadyForPromotion(ctx context.Context, limit int) ([]*domain.CompetencyProgression, error)

	// CountByHiringBand counts progressions per hiring band.
	CountByHiringBand(ctx context.Context) (map[domain.HiringBand]int, error)

	// WithTx returns a new CompetencyStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CompetencyStore
}
