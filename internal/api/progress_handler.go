package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/store"
)

// ProgressTracker is the part of service.ProgressService the handlers use.
type ProgressTracker interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, a service.Activity) (*domain.UserProgress, error)
	Get(ctx context.Context, userID uuid.UUID, t service.Target) (*domain.UserProgress, error)
	List(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.UserProgress, service.PageInfo, error)
	ListByStatus(ctx context.Context, userID uuid.UUID, status domain.ProgressStatus) ([]*domain.UserProgress, error)
	RecentlyActive(ctx context.Context, userID uuid.UUID) ([]*domain.UserProgress, error)
	ModulesNeedingReview(ctx context.Context, userID uuid.UUID, olderThan time.Duration) ([]*domain.UserProgress, error)
	Statistics(ctx context.Context, userID uuid.UUID) (*store.UserProgressStats, error)
}

// ProgressHandler serves the authenticated learner's progress.
type ProgressHandler struct {
	progress ProgressTracker
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progress ProgressTracker) *ProgressHandler {
	if progress == nil {
		panic("progress tracker cannot be nil")
	}
	return &ProgressHandler{progress: progress}
}

// List handles GET /progress. With ?status= it returns every row in that
// status; otherwise it pages with ?page=&size=.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseProgressStatus(raw)
		if !ok {
			HandleAPIError(w, r, domain.NewValidationError("status", "is not a known status", domain.ErrInvalidStatus), "")
			return
		}
		rows, err := h.progress.ListByStatus(r.Context(), userID, status)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to list progress")
			return
		}
		shared.RespondWithData(w, r, http.StatusOK, rows)
		return
	}

	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	rows, info, err := h.progress.List(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list progress")
		return
	}
	shared.RespondWithPage(w, r, rows, info)
}

// Recent handles GET /progress/recent.
func (h *ProgressHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	rows, err := h.progress.RecentlyActive(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list recent progress")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, rows)
}

// defaultStaleDays is how long a completed module may go unvisited before
// it is suggested for review.
const defaultStaleDays = 30

// NeedingReview handles GET /progress/needing-review?days=.
func (h *ProgressHandler) NeedingReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r.URL.Query().Get("days"), defaultStaleDays)
	if err != nil || days < 1 {
		HandleAPIError(w, r, domain.NewValidationError("days", "must be a positive integer", domain.ErrValidation), "")
		return
	}
	rows, err := h.progress.ModulesNeedingReview(r.Context(), userID, time.Duration(days)*24*time.Hour)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list modules needing review")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, rows)
}

// Stats handles GET /progress/stats.
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.progress.Statistics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress statistics")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, stats)
}

// GetModule handles GET /progress/modules/{moduleId}.
func (h *ProgressHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "moduleId", service.ModuleTarget)
}

// GetTopic handles GET /progress/topics/{topicId}.
func (h *ProgressHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, "topicId", service.TopicTarget)
}

// PutModule handles PUT /progress/modules/{moduleId}.
func (h *ProgressHandler) PutModule(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, "moduleId", service.ModuleTarget)
}

// PutTopic handles PUT /progress/topics/{topicId}.
func (h *ProgressHandler) PutTopic(w http.ResponseWriter, r *http.Request) {
	h.put(w, r, "topicId", service.TopicTarget)
}

func (h *ProgressHandler) get(w http.ResponseWriter, r *http.Request, param string, target func(uuid.UUID) service.Target) {
	userID, id, ok := requireUserAndPathUUID(w, r, param)
	if !ok {
		return
	}
	p, err := h.progress.Get(r.Context(), userID, target(id))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get progress")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, p)
}

func (h *ProgressHandler) put(w http.ResponseWriter, r *http.Request, param string, target func(uuid.UUID) service.Target) {
	userID, id, ok := requireUserAndPathUUID(w, r, param)
	if !ok {
		return
	}
	var req ProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.progress.RecordActivity(r.Context(), userID, service.Activity{
		Target:             target(id),
		ProgressPercentage: req.ProgressPercentage,
		TimeSpentMinutes:   req.TimeSpentMinutes,
		Rating:             req.Rating,
		Notes:              req.Notes,
		Complete:           req.Completed,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record progress")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, p)
}
