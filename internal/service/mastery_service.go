package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/store"
)

// BloomsUpdate carries new level scores for one content item. Levels not in
// Scores keep their stored value.
type BloomsUpdate struct {
	Scores                map[domain.BloomsLevel]int
	ProgressionEvidence   *string
	NextLevelRequirements *string
}

// CompetencyAssessment carries a new assessment. Nil fields are unchanged.
type CompetencyAssessment struct {
	InterviewReadiness     *int
	CulturalFit            *int
	CurrentLevel           *domain.CompetencyLevel
	TargetLevel            *domain.CompetencyLevel
	CompetencyGaps         *string
	LeadershipPrinciples   *string
	TechnicalCompetencies  *string
	BehavioralCompetencies *string
	ProgressionTimeline    *string
}

// MasteryService tracks Bloom's taxonomy and engineering level progression.
type MasteryService struct {
	blooms     store.BloomsStore
	competency store.CompetencyStore
	logger     *slog.Logger
	now        func() time.Time
}

// NewMasteryService creates a MasteryService.
func NewMasteryService(
	blooms store.BloomsStore,
	competency store.CompetencyStore,
	logger *slog.Logger,
) (*MasteryService, error) {
	if blooms == nil || competency == nil {
		return nil, &ServiceError{Service: "mastery", Op: "create_service", Err: errors.New("dependencies cannot be nil")}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MasteryService{
		blooms:     blooms,
		competency: competency,
		logger:     logger.With(slog.String("component", "mastery_service")),
		now:        time.Now,
	}, nil
}

// Blooms returns the learner's progression on a content item, or a fresh
// REMEMBER progression when there is none.
func (s *MasteryService) Blooms(ctx context.Context, userID, contentID uuid.UUID) (*domain.BloomsTaxonomyProgression, error) {
	p, err := s.blooms.Get(ctx, userID, contentID)
	if errors.Is(err, store.ErrBloomsNotFound) {
		return domain.NewBloomsTaxonomyProgression(userID, contentID), nil
	}
	if err != nil {
		return nil, NewServiceError("mastery", "get_blooms", err)
	}
	return p, nil
}

// RecordBlooms applies new scores and advances the learner through every
// level whose score now reaches the advancement threshold.
func (s *MasteryService) RecordBlooms(
	ctx context.Context,
	userID, contentID uuid.UUID,
	u BloomsUpdate,
) (*domain.BloomsTaxonomyProgression, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	for _, score := range u.Scores {
		if score < 0 || score > 100 {
			return nil, domain.ErrInvalidBloomsScore
		}
	}

	p, err := s.Blooms(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	for level, score := range u.Scores {
		setBloomsScore(p, level, score)
	}
	if u.ProgressionEvidence != nil {
		p.ProgressionEvidence = *u.ProgressionEvidence
	}
	if u.NextLevelRequirements != nil {
		p.NextLevelRequirements = *u.NextLevelRequirements
	}

	from := p.CurrentLevel
	for p.Advance(now) {
	}
	p.UpdatedAt = now

	if err := s.blooms.Upsert(ctx, p); err != nil {
		return nil, NewServiceError("mastery", "record_blooms", err)
	}
	if p.CurrentLevel != from {
		log.Info("bloom's level advanced",
			slog.String("user_id", userID.String()),
			slog.String("content_id", contentID.String()),
			slog.String("from", string(from)),
			slog.String("to", string(p.CurrentLevel)))
	}
	return p, nil
}

func setBloomsScore(p *domain.BloomsTaxonomyProgression, level domain.BloomsLevel, score int) {
	switch level {
	case domain.BloomsRemember:
		p.RememberScore = score
	case domain.BloomsUnderstand:
		p.UnderstandScore = score
	case domain.BloomsApply:
		p.ApplyScore = score
	case domain.BloomsAnalyze:
		p.AnalyzeScore = score
	case domain.BloomsEvaluate:
		p.EvaluateScore = score
	case domain.BloomsCreate:
		p.CreateScore = score
	}
}

// ListBlooms returns all of the learner's progressions.
func (s *MasteryService) ListBlooms(ctx context.Context, userID uuid.UUID) ([]*domain.BloomsTaxonomyProgression, error) {
	rows, err := s.blooms.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("mastery", "list_blooms", err)
	}
	return rows, nil
}

// BloomsSummary is the learner's spread across levels.
type BloomsSummary struct {
	Distribution   map[domain.BloomsLevel]int          `json:"distribution"`
	ReadyToAdvance []*domain.BloomsTaxonomyProgression `json:"ready_to_advance"`
}

// SummarizeBlooms counts the learner's progressions per level and lists
// those ready to advance.
func (s *MasteryService) SummarizeBlooms(ctx context.Context, userID uuid.UUID) (*BloomsSummary, error) {
	dist, err := s.blooms.LevelDistribution(ctx, userID)
	if err != nil {
		return nil, NewServiceError("mastery", "summarize_blooms", err)
	}
	ready, err := s.blooms.ListReadyToAdvance(ctx, userID)
	if err != nil {
		return nil, NewServiceError("mastery", "summarize_blooms", err)
	}
	return &BloomsSummary{Distribution: dist, ReadyToAdvance: ready}, nil
}

// Competency returns the learner's engineering level progression, or a
// fresh L3 to L5 progression when there is none.
func (s *MasteryService) Competency(ctx context.Context, userID uuid.UUID) (*domain.CompetencyProgression, error) {
	c, err := s.competency.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrCompetencyNotFound) {
		return domain.NewCompetencyProgression(userID), nil
	}
	if err != nil {
		return nil, NewServiceError("mastery", "get_competency", err)
	}
	return c, nil
}

// Assess records a competency assessment. New scores stamp lastAssessed.
func (s *MasteryService) Assess(
	ctx context.Context,
	userID uuid.UUID,
	a CompetencyAssessment,
) (*domain.CompetencyProgression, error) {
	now := s.now().UTC()

	c, err := s.Competency(ctx, userID)
	if err != nil {
		return nil, err
	}

	if a.InterviewReadiness != nil || a.CulturalFit != nil {
		readiness, fit := c.InterviewReadinessScore, c.CulturalFitScore
		if a.InterviewReadiness != nil {
			readiness = *a.InterviewReadiness
		}
		if a.CulturalFit != nil {
			fit = *a.CulturalFit
		}
		if err := c.Assess(readiness, fit, now); err != nil {
			return nil, err
		}
	}
	if a.CurrentLevel != nil {
		c.CurrentLevel = *a.CurrentLevel
	}
	if a.TargetLevel != nil {
		c.TargetLevel = *a.TargetLevel
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&c.CompetencyGaps, a.CompetencyGaps)
	assign(&c.LeadershipPrinciplesProgress, a.LeadershipPrinciples)
	assign(&c.TechnicalCompetencies, a.TechnicalCompetencies)
	assign(&c.BehavioralCompetencies, a.BehavioralCompetencies)
	assign(&c.ProgressionTimeline, a.ProgressionTimeline)
	c.UpdatedAt = now

	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.competency.Upsert(ctx, c); err != nil {
		return nil, NewServiceError("mastery", "assess", err)
	}
	return c, nil
}

// PromotionCandidates lists learners who clear the bar for their next level.
func (s *MasteryService) PromotionCandidates(ctx context.Context, limit int) ([]*domain.CompetencyProgression, error) {
	rows, err := s.competency.ListReadyForPromotion(ctx, limit)
	if err != nil {
		return nil, NewServiceError("mastery", "promotion_candidates", err)
	}
	return rows, nil
}

// HiringBands counts learners per hiring band.
func (s *MasteryService) HiringBands(ctx context.Context) (map[domain.HiringBand]int, error) {
	counts, err := s.competency.CountByHiringBand(ctx)
	if err != nil {
		return nil, NewServiceError("mastery", "hiring_bands", err)
	}
	return counts, nil
}
