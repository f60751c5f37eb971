package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/phrazzld/academy-api/internal/platform/metrics"
)

// DefaultSlowRequestThreshold is used when no threshold is configured.
const DefaultSlowRequestThreshold = time.Second

type startKey struct{}

// RequestStart returns when the timing middleware first saw the request.
func RequestStart(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startKey{}).(time.Time)
	return t, ok
}

// Timing measures every request, feeds the duration to a metrics.Recorder
// and warns about slow requests. It never alters the response.
type Timing struct {
	recorder  metrics.Recorder
	threshold time.Duration
	logger    *slog.Logger
	since     func(time.Time) time.Duration
}

// NewTiming creates the timing middleware. A non-positive threshold uses
// DefaultSlowRequestThreshold.
func NewTiming(recorder metrics.Recorder, threshold time.Duration, logger *slog.Logger) *Timing {
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if threshold <= 0 {
		threshold = DefaultSlowRequestThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Timing{
		recorder:  recorder,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "request_timing")),
		since:     time.Since,
	}
}

// Handler is the middleware function. A panic in next is measured as a 500
// and then re-raised for the recoverer.
func (t *Timing) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r = r.WithContext(context.WithValue(r.Context(), startKey{}, start))
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			p := recover()
			t.record(r, ww.Status(), p != nil, start)
			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

func (t *Timing) record(r *http.Request, status int, panicked bool, start time.Time) {
	log := logger.FromContextOrDefault(r.Context(), t.logger)
	defer func() {
		if p := recover(); p != nil {
			log.Error("request timing failed", slog.Any("panic", p))
		}
	}()

	elapsed := t.since(start)
	switch {
	case panicked && status == 0:
		status = http.StatusInternalServerError
	case status == 0:
		status = http.StatusOK
	}

	endpoint := routePattern(r)
	t.recorder.ObserveRequest(r.Method, endpoint, status, elapsed)

	if elapsed > t.threshold {
		log.Warn("slow API request detected",
			slog.String("method", r.Method),
			slog.String("endpoint", endpoint),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			slog.Int64("threshold_ms", t.threshold.Milliseconds()))
	}
}

// UnmatchedRoute is the endpoint key for requests no route matched.
const UnmatchedRoute = "unmatched"

// routePattern is the matched chi pattern, so /api/notes/{noteId} is one
// key rather than one per note. Raw paths are never used as keys.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return UnmatchedRoute
}
