package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/academy-api/internal/api"
	apiMiddleware "github.com/phrazzld/academy-api/internal/api/middleware"
	"github.com/phrazzld/academy-api/internal/api/shared"
	"github.com/phrazzld/academy-api/internal/redact"
	"github.com/phrazzld/academy-api/internal/validation"
)

// healthTimeout bounds the database ping behind /health.
const healthTimeout = 2 * time.Second

// rawRoutes write their own body instead of the {"data": ...} envelope.
var rawRoutes = []string{"/metrics"}

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

// handlers is everything the router mounts. A nil limiter disables rate
// limiting and a nil health pinger reports healthy without a database check.
type handlers struct {
	auth     *api.AuthHandler
	content  *api.ContentHandler
	progress *api.ProgressHandler
	reviews  *api.ReviewHandler
	mastery  *api.MasteryHandler
	notes    *api.NoteHandler
	reports  *api.ReportHandler

	authMW  *apiMiddleware.AuthMiddleware
	timing  *apiMiddleware.Timing
	limiter *apiMiddleware.RateLimiter
	metrics http.Handler
	health  pinger
}

// newRouter creates the chi router with middleware and every route.
func newRouter(h handlers, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(logger))
	r.Use(middleware.Recoverer)
	r.Use(h.timing.Handler)
	if h.limiter != nil {
		r.Use(h.limiter.Handler)
	}

	r.Get("/health", healthHandler(h.health))
	r.Method(http.MethodGet, "/metrics", h.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.auth.Register)
		r.Post("/auth/login", h.auth.Login)
		r.Post("/auth/refresh", h.auth.RefreshToken)

		r.Get("/modules", h.content.ListModules)
		r.Get("/modules/{moduleId}", h.content.GetModule)
		r.Get("/modules/{moduleId}/topics", h.content.ListTopics)
		r.Get("/modules/{moduleId}/questions", h.content.ListQuestions)

		r.Group(func(r chi.Router) {
			r.Use(h.authMW.Authenticate)

			r.Get("/modules/{moduleId}/stats", h.content.ModuleStats)

			r.Route("/progress", func(r chi.Router) {
				r.Get("/", h.progress.List)
				r.Get("/recent", h.progress.Recent)
				r.Get("/stats", h.progress.Stats)
				r.Get("/needing-review", h.progress.NeedingReview)
				r.Get("/modules/{moduleId}", h.progress.GetModule)
				r.Put("/modules/{moduleId}", h.progress.PutModule)
				r.Get("/topics/{topicId}", h.progress.GetTopic)
				r.Put("/topics/{topicId}", h.progress.PutTopic)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", h.reviews.List)
				r.Post("/", h.reviews.Schedule)
				r.Get("/due", h.reviews.Due)
				r.Get("/overdue", h.reviews.Overdue)
				r.Get("/priority", h.reviews.Priority)
				r.Get("/low-retention", h.reviews.LowRetention)
				r.Get("/stats", h.reviews.Stats)
				r.Get("/{scheduleId}", h.reviews.Get)
				r.Post("/{scheduleId}/answers", h.reviews.SubmitAnswer)
				r.Post("/{scheduleId}/postpone", h.reviews.Postpone)
			})

			r.Route("/blooms", func(r chi.Router) {
				r.Get("/", h.mastery.ListBlooms)
				r.Get("/summary", h.mastery.BloomsSummary)
				r.Get("/{contentId}", h.mastery.GetBlooms)
				r.Put("/{contentId}", h.mastery.PutBlooms)
			})

			r.Get("/competencies/me", h.mastery.GetCompetency)
			r.Put("/competencies/me", h.mastery.PutCompetency)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", h.notes.List)
				r.Post("/", h.notes.Create)
				r.Get("/{noteId}", h.notes.Get)
				r.Delete("/{noteId}", h.notes.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin)
				r.Get("/catalog", h.reports.Catalog)
				r.Get("/promotions", h.reports.Promotions)
				r.Get("/hiring-bands", h.reports.HiringBands)
				r.Get("/timings", h.reports.Timings)
			})
		})
	})

	return r
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
				return
			}
		}
		shared.RespondWithData(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// lintRoutes checks the route table against the REST conventions and logs
// what it finds. It never fails startup.
func lintRoutes(routes chi.Routes, logger *slog.Logger) validation.Result {
	table, err := validation.RoutesFromChi(routes, rawRoutes...)
	if err != nil {
		logger.Warn("failed to walk route table", redact.ErrorAttr(err))
		return validation.Result{}
	}

	res := validation.NewRESTValidator("/api").ValidateRoutes(table)
	for _, issue := range res.Errors {
		logger.Error("route violates REST conventions",
			slog.String("method", issue.Method),
			slog.String("pattern", issue.Pattern),
			slog.String("issue", issue.Message))
	}
	for _, issue := range res.Warnings {
		logger.Debug("route convention warning",
			slog.String("method", issue.Method),
			slog.String("pattern", issue.Pattern),
			slog.String("issue", issue.Message))
	}
	logger.Info("route table checked",
		slog.Int("routes", len(table)),
		slog.Int("errors", len(res.Errors)),
		slog.Int("warnings", len(res.Warnings)))
	return res
}
