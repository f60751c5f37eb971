package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/service"
	"github.com/phrazzld/academy-api/internal/service/review"
)

// Reviewer is the part of review.Service the handlers use.
type Reviewer interface {
	Schedule(
		ctx context.Context,
		userID, contentID uuid.UUID,
		contentType domain.ContentType,
		priority bool,
	) (*domain.SpacedRepetitionSchedule, bool, error)
	SubmitReview(ctx context.Context, userID, scheduleID uuid.UUID, sub review.Submission) (*review.Result, error)
	Postpone(ctx context.Context, userID, scheduleID uuid.UUID, days int) (*domain.SpacedRepetitionSchedule, error)
	Get(ctx context.Context, userID, scheduleID uuid.UUID) (*domain.SpacedRepetitionSchedule, error)
	List(ctx context.Context, userID uuid.UUID, page service.Page) ([]*domain.SpacedRepetitionSchedule, error)
	Due(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SpacedRepetitionSchedule, error)
	Overdue(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error)
	PriorityDue(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error)
	LowRetention(ctx context.Context, userID uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error)
	Statistics(ctx context.Context, userID uuid.UUID) (*review.Stats, error)
}

// ReviewHandler serves spaced repetition reviews.
type ReviewHandler struct {
	reviews Reviewer
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews Reviewer) *ReviewHandler {
	if reviews == nil {
		panic("reviewer cannot be nil")
	}
	return &ReviewHandler{reviews: reviews}
}

// Schedule handles POST /reviews. It answers 201 for a new schedule and 200
// when the item was already scheduled.
func (h *ReviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	contentType, ok := domain.ParseContentType(req.ContentType)
	if !ok {
		HandleAPIError(w, r, domain.NewValidationError("content_type", "is not a known content type", domain.ErrValidation), "")
		return
	}

	sched, created, err := h.reviews.Schedule(r.Context(), userID, req.ContentID, contentType, req.Priority)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to schedule review")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithData(w, r, status, sched)
}

// List handles GET /reviews, soonest first.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	rows, err := h.reviews.List(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithPage(w, r, rows, page)
}

// Due handles GET /reviews/due?limit=.
func (h *ReviewHandler) Due(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := review.DefaultDueLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			HandleAPIError(w, r, domain.NewValidationError("limit", "must be a positive integer", domain.ErrOutOfRange), "")
			return
		}
		limit = n
	}
	rows, err := h.reviews.Due(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due reviews")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, rows)
}

// Overdue handles GET /reviews/overdue.
func (h *ReviewHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, h.reviews.Overdue, "Failed to list overdue reviews")
}

// Priority handles GET /reviews/priority.
func (h *ReviewHandler) Priority(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, h.reviews.PriorityDue, "Failed to list priority reviews")
}

// LowRetention handles GET /reviews/low-retention.
func (h *ReviewHandler) LowRetention(w http.ResponseWriter, r *http.Request) {
	h.listWith(w, r, h.reviews.LowRetention, "Failed to list low retention reviews")
}

func (h *ReviewHandler) listWith(
	w http.ResponseWriter,
	r *http.Request,
	list func(context.Context, uuid.UUID) ([]*domain.SpacedRepetitionSchedule, error),
	failure string,
) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	rows, err := list(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, rows)
}

// Stats handles GET /reviews/stats.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.reviews.Statistics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review statistics")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, stats)
}

// Get handles GET /reviews/{scheduleId}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requireUserAndPathUUID(w, r, "scheduleId")
	if !ok {
		return
	}
	sched, err := h.reviews.Get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, sched)
}

// SubmitAnswer handles POST /reviews/{scheduleId}/answers.
func (h *ReviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requireUserAndPathUUID(w, r, "scheduleId")
	if !ok {
		return
	}
	var req AnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	quality, err := req.ReviewQuality()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.reviews.SubmitReview(r.Context(), userID, id, review.Submission{EventID: req.EventID, Quality: quality})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, res)
}

// Postpone handles POST /reviews/{scheduleId}/postpone.
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requireUserAndPathUUID(w, r, "scheduleId")
	if !ok {
		return
	}
	var req PostponeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sched, err := h.reviews.Postpone(r.Context(), userID, id, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone review")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, sched)
}
