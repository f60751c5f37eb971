package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
)

// MasteryTracker is the learner-facing part of service.MasteryService.
type MasteryTracker interface {
	Blooms(ctx context.Context, userID, contentID uuid.UUID) (*domain.BloomsTaxonomyProgression, error)
	RecordBlooms(ctx context.Context, userID, contentID uuid.UUID, u service.BloomsUpdate) (*domain.BloomsTaxonomyProgression, error)
	ListBlooms(ctx context.Context, userID uuid.UUID) ([]*domain.BloomsTaxonomyProgression, error)
	SummarizeBlooms(ctx context.Context, userID uuid.UUID) (*service.BloomsSummary, error)
	Competency(ctx context.Context, userID uuid.UUID) (*domain.CompetencyProgression, error)
	Assess(ctx context.Context, userID uuid.UUID, a service.CompetencyAssessment) (*domain.CompetencyProgression, error)
}

// MasteryHandler serves Bloom's taxonomy and competency progression.
type MasteryHandler struct {
	mastery MasteryTracker
	now     func() time.Time
}

// NewMasteryHandler creates a MasteryHandler.
func NewMasteryHandler(mastery MasteryTracker) *MasteryHandler {
	if mastery == nil {
		panic("mastery tracker cannot be nil")
	}
	return &MasteryHandler{mastery: mastery, now: time.Now}
}

// ListBlooms handles GET /blooms.
func (h *MasteryHandler) ListBlooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	rows, err := h.mastery.ListBlooms(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list bloom's progression")
		return
	}
	out := make([]BloomsResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, newBloomsResponse(p))
	}
	shared.RespondWithData(w, r, http.StatusOK, out)
}

// BloomsSummary handles GET /blooms/summary.
func (h *MasteryHandler) BloomsSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.mastery.SummarizeBlooms(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to summarize bloom's progression")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, summary)
}

// GetBlooms handles GET /blooms/{contentId}. Unscored content reads as a
// fresh REMEMBER record.
func (h *MasteryHandler) GetBlooms(w http.ResponseWriter, r *http.Request) {
	userID, contentID, ok := requireUserAndPathUUID(w, r, "contentId")
	if !ok {
		return
	}
	p, err := h.mastery.Blooms(r.Context(), userID, contentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get bloom's progression")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, newBloomsResponse(p))
}

// PutBlooms handles PUT /blooms/{contentId}.
func (h *MasteryHandler) PutBlooms(w http.ResponseWriter, r *http.Request) {
	userID, contentID, ok := requireUserAndPathUUID(w, r, "contentId")
	if !ok {
		return
	}
	var req BloomsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	scores, err := req.Levels()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	p, err := h.mastery.RecordBlooms(r.Context(), userID, contentID, service.BloomsUpdate{
		Scores:                scores,
		ProgressionEvidence:   req.ProgressionEvidence,
		NextLevelRequirements: req.NextLevelRequirements,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record bloom's scores")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, newBloomsResponse(p))
}

// GetCompetency handles GET /competencies/me.
func (h *MasteryHandler) GetCompetency(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	c, err := h.mastery.Competency(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get competency progression")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, newCompetencyResponse(c, h.now()))
}

// PutCompetency handles PUT /competencies/me.
func (h *MasteryHandler) PutCompetency(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CompetencyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.mastery.Assess(r.Context(), userID, service.CompetencyAssessment{
		InterviewReadiness:     req.InterviewReadinessScore,
		CulturalFit:            req.CulturalFitScore,
		CurrentLevel:           parseLevel(req.CurrentLevel),
		TargetLevel:            parseLevel(req.TargetLevel),
		CompetencyGaps:         req.CompetencyGaps,
		LeadershipPrinciples:   req.LeadershipPrinciplesProgress,
		TechnicalCompetencies:  req.TechnicalCompetencies,
		BehavioralCompetencies: req.BehavioralCompetencies,
		ProgressionTimeline:    req.ProgressionTimeline,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record assessment")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, newCompetencyResponse(c, h.now()))
}

// parseLevel converts an already validated level name.
func parseLevel(s *string) *domain.CompetencyLevel {
	if s == nil {
		return nil
	}
	l, _ := domain.ParseCompetencyLevel(*s)
	return &l
}
