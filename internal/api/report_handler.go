package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/domain"
	"github.com/phrazzld/academy-api/internal/platform/metrics"
	"github.com/phrazzld/academy-api/internal/service"
)

// CatalogCounter sizes the seeded catalog.
type CatalogCounter interface {
	Counts(ctx context.Context) (*service.CatalogCounts, error)
}

// CohortReporter is the admin-facing part of service.MasteryService.
type CohortReporter interface {
	PromotionCandidates(ctx context.Context, limit int) ([]*domain.CompetencyProgression, error)
	HiringBands(ctx context.Context) (map[domain.HiringBand]int, error)
}

// TimingSnapshotter exposes per-endpoint timings.
type TimingSnapshotter interface {
	Snapshot() []metrics.Endpoint
}

// defaultCandidateLimit caps the promotion candidate list.
const defaultCandidateLimit = 50

// EndpointTiming is one row of the timing report.
type EndpointTiming struct {
	Endpoint  string  `json:"endpoint"`
	Count     int64   `json:"count"`
	AverageMS float64 `json:"average_ms"`
	MaxMS     float64 `json:"max_ms"`
	TotalMS   float64 `json:"total_ms"`
}

// ReportHandler serves admin reports. Routes are expected behind
// middleware.RequireAdmin.
type ReportHandler struct {
	catalog CatalogCounter
	cohort  CohortReporter
	timings TimingSnapshotter
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(catalog CatalogCounter, cohort CohortReporter, timings TimingSnapshotter) *ReportHandler {
	if catalog == nil || cohort == nil || timings == nil {
		panic("report handler dependencies cannot be nil")
	}
	return &ReportHandler{catalog: catalog, cohort: cohort, timings: timings}
}

// Catalog handles GET /reports/catalog.
func (h *ReportHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	counts, err := h.catalog.Counts(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count catalog")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, counts)
}

// Promotions handles GET /reports/promotions?limit=.
func (h *ReportHandler) Promotions(w http.ResponseWriter, r *http.Request) {
	limit := defaultCandidateLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > service.MaxPageSize {
			HandleAPIError(w, r, domain.NewValidationError("limit", "must be between 1 and 100", domain.ErrOutOfRange), "")
			return
		}
		limit = n
	}
	rows, err := h.cohort.PromotionCandidates(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list promotion candidates")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, rows)
}

// HiringBands handles GET /reports/hiring-bands.
func (h *ReportHandler) HiringBands(w http.ResponseWriter, r *http.Request) {
	counts, err := h.cohort.HiringBands(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count hiring bands")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, counts)
}

// Timings handles GET /reports/timings.
func (h *ReportHandler) Timings(w http.ResponseWriter, r *http.Request) {
	snap := h.timings.Snapshot()
	out := make([]EndpointTiming, 0, len(snap))
	for _, e := range snap {
		out = append(out, EndpointTiming{
			Endpoint:  e.Key,
			Count:     e.Count,
			AverageMS: ms(e.Average()),
			MaxMS:     ms(e.Max),
			TotalMS:   ms(e.Total),
		})
	}
	shared.RespondWithData(w, r, http.StatusOK, out)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
