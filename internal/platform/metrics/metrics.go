package metrics

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives one observation per completed HTTP request.
type Recorder interface {
	ObserveRequest(method, endpoint string, status int, elapsed time.Duration)
}

// Endpoint is the in-process summary for one "METHOD path" key.
type Endpoint struct {
	Key   string        `json:"key"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Max   time.Duration `json:"max"`
}

// Average is the mean duration per request.
func (e Endpoint) Average() time.Duration {
	if e.Count == 0 {
		return 0
	}
	return e.Total / time.Duration(e.Count)
}

// Metrics owns a private Prometheus registry and every collector the
// service exports.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	due      prometheus.Gauge
	overdue  prometheus.Gauge
	oldest   prometheus.Gauge
	stale    prometheus.Gauge
	sweeps   *prometheus.CounterVec

	mu        sync.Mutex
	endpoints map[string]*Endpoint
}

var _ Recorder = (*Metrics)(nil)

// New creates the collectors and registers them together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		due: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reviews_due",
			Help: "Spaced repetition reviews due now across all learners.",
		}),
		overdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reviews_overdue",
			Help: "Spaced repetition reviews past the overdue grace period.",
		}),
		oldest: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reviews_oldest_due_seconds",
			Help: "How long the oldest due review has been waiting.",
		}),
		stale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progress_stale",
			Help: "In-progress rows untouched past the stale age, capped at the sweep sample size.",
		}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_sweeps_total",
			Help: "Review sweep runs by result.",
		}, []string{"result"}),
		endpoints: make(map[string]*Endpoint),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.due, m.overdue, m.oldest, m.stale, m.sweeps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest implements Recorder.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())

	key := method + " " + endpoint
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.endpoints[key]
	if !ok {
		e = &Endpoint{Key: key}
		m.endpoints[key] = e
	}
	e.Count++
	e.Total += elapsed
	if elapsed > e.Max {
		e.Max = elapsed
	}
}

// Snapshot copies the per-endpoint summaries, sorted by key.
func (m *Metrics) Snapshot() []Endpoint {
	m.mu.Lock()
	out := make([]Endpoint, 0, len(m.endpoints))
	for _, e := range m.endpoints {
		out = append(out, *e)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SetReviewLoad publishes the latest sweep counts.
func (m *Metrics) SetReviewLoad(due, overdue int) {
	m.due.Set(float64(due))
	m.overdue.Set(float64(overdue))
	m.sweeps.WithLabelValues("ok").Inc()
}

// SetBacklog publishes the age of the oldest due review and the stale
// progress sample size.
func (m *Metrics) SetBacklog(oldestDue time.Duration, stale int) {
	m.oldest.Set(oldestDue.Seconds())
	m.stale.Set(float64(stale))
}

// SweepFailed counts a sweep that could not read the store.
func (m *Metrics) SweepFailed() {
	m.sweeps.WithLabelValues("error").Inc()
}
