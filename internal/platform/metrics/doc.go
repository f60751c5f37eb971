// Package metrics publishes request timings and review load to Prometheus
// and keeps an in-process summary of request timings for inspection.
package metrics
