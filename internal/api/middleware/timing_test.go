package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/academy-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, endpoint string
	status           int
	elapsed          time.Duration
}

type fakeRecorder struct {
	mu    sync.Mutex
	obs   []observation
	panic bool
}

func (f *fakeRecorder) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if f.panic {
		panic("recorder broke")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{method, endpoint, status, elapsed})
}

func timedRouter(t *testing.T, rec *fakeRecorder, elapsed time.Duration) (http.Handler, *logger.TestLogBuffer) {
	t.Helper()
	log, buf := logger.GetTestLogger(t)
	timing := NewTiming(rec, 0, log)
	timing.since = func(time.Time) time.Duration { return elapsed }

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(timing.Handler)
	r.Get("/api/notes/{noteId}", func(w http.ResponseWriter, r *http.Request) {
		_, ok := RequestStart(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	})
	r.Get("/api/panic", func(http.ResponseWriter, *http.Request) { panic("handler broke") })
	return r, buf
}

func TestTimingRecordsRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	h, buf := timedRouter(t, rec, 20*time.Millisecond)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/123", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "body", w.Body.String())
	require.Len(t, rec.obs, 1)
	assert.Equal(t, observation{"GET", "/api/notes/{noteId}", http.StatusTeapot, 20 * time.Millisecond}, rec.obs[0])
	assert.NotContains(t, buf.String(), "slow API request")
}

func TestTimingWarnsAboveThreshold(t *testing.T) {
	rec := &fakeRecorder{}
	h, buf := timedRouter(t, rec, 1500*time.Millisecond)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes/1", nil))

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "slow API request detected", entries[0]["msg"])
	assert.EqualValues(t, 1500, entries[0]["duration_ms"])
	assert.EqualValues(t, 1000, entries[0]["threshold_ms"])
}

func TestTimingMeasuresPanics(t *testing.T) {
	rec := &fakeRecorder{}
	h, _ := timedRouter(t, rec, time.Millisecond)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code, "recoverer still sees the panic")
	require.Len(t, rec.obs, 1)
	assert.Equal(t, http.StatusInternalServerError, rec.obs[0].status)
}

func TestTimingSurvivesRecorderFailure(t *testing.T) {
	rec := &fakeRecorder{panic: true}
	h, buf := timedRouter(t, rec, time.Millisecond)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/1", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "body", w.Body.String())
	assert.Contains(t, buf.String(), "request timing failed")
}

func TestUnmatchedPathsShareOneKey(t *testing.T) {
	rec := &fakeRecorder{}
	timing := NewTiming(rec, time.Second, nil)
	h := timing.Handler(http.NotFoundHandler())

	for _, path := range []string{"/nowhere", "/random/a1", "/random/b2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	require.Len(t, rec.obs, 3)
	for _, o := range rec.obs {
		assert.Equal(t, UnmatchedRoute, o.endpoint)
		assert.Equal(t, http.StatusNotFound, o.status)
	}
}

func TestUnknownRoutesDoNotAddKeys(t *testing.T) {
	rec := &fakeRecorder{}
	h, _ := timedRouter(t, rec, time.Millisecond)

	for _, path := range []string{"/random/a1", "/random/b2", "/random/c3"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	keys := map[string]bool{}
	for _, o := range rec.obs {
		keys[o.endpoint] = true
	}
	assert.Equal(t, map[string]bool{UnmatchedRoute: true}, keys)
}
