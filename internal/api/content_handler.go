package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/store"
)

// ContentReader is the part of service.ContentService the handlers use.
type ContentReader interface {
	Modules(ctx context.Context, category *domain.Category) ([]*domain.LearningModule, error)
	Module(ctx context.Context, id uuid.UUID) (*service.ModuleDetail, error)
	Topics(ctx context.Context, moduleID uuid.UUID) ([]*domain.Topic, error)
	Questions(ctx context.Context, moduleID uuid.UUID, company *domain.Company) ([]*domain.InterviewQuestion, error)
}

// ModuleStatsReader reports aggregate progress for a module.
type ModuleStatsReader interface {
	ModuleStatistics(ctx context.Context, moduleID uuid.UUID) (*store.ModuleProgressStats, error)
}

// ContentHandler serves the seeded catalog.
type ContentHandler struct {
	content ContentReader
	stats   ModuleStatsReader
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(content ContentReader, stats ModuleStatsReader) *ContentHandler {
	if content == nil || stats == nil {
		panic("content handler dependencies cannot be nil")
	}
	return &ContentHandler{content: content, stats: stats}
}

// ListModules handles GET /modules, optionally filtered by ?category=.
func (h *ContentHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	var filter *domain.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := domain.ParseCategory(raw)
		if !ok {
			HandleAPIError(w, r, domain.NewValidationError("category", "is not a known category", domain.ErrValidation), "")
			return
		}
		filter = &c
	}

	modules, err := h.content.Modules(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list modules")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, modules)
}

// GetModule handles GET /modules/{moduleId}.
func (h *ContentHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "moduleId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	module, err := h.content.Module(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get module")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, module)
}

// ListTopics handles GET /modules/{moduleId}/topics.
func (h *ContentHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "moduleId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	topics, err := h.content.Topics(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, topics)
}

// ListQuestions handles GET /modules/{moduleId}/questions, optionally
// filtered by ?company=.
func (h *ContentHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "moduleId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var company *domain.Company
	if raw := r.URL.Query().Get("company"); raw != "" {
		c, ok := domain.ParseCompany(raw)
		if !ok {
			HandleAPIError(w, r, domain.NewValidationError("company", "is not a known company", domain.ErrValidation), "")
			return
		}
		company = &c
	}

	questions, err := h.content.Questions(r.Context(), id, company)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list questions")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, questions)
}

// ModuleStats handles GET /modules/{moduleId}/stats.
func (h *ContentHandler) ModuleStats(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "moduleId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if _, err := h.content.Module(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to get module")
		return
	}
	stats, err := h.stats.ModuleStatistics(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get module statistics")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, stats)
}
