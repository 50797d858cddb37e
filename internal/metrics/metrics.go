// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roombot"

// Metrics groups every collector the service records to.
type Metrics struct {
	// Command pipeline
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// HTTP transport
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimited         prometheus.Counter

	// Background work
	CalendarSyncFailures *prometheus.CounterVec
	BookingsCompleted    prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total chat commands handled",
			},
			[]string{"kind", "outcome"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Chat command handling duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"kind"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Total requests rejected by the rate limiter",
			},
		),
		CalendarSyncFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_sync_failures_total",
				Help:      "Total failed calendar sync operations",
			},
			[]string{"op"}, // "create", "update" or "cancel"
		),
		BookingsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_completed_total",
				Help:      "Total bookings marked completed by the completion job",
			},
		),
	}
}

// ObserveCommand records one handled command.
func (m *Metrics) ObserveCommand(kind, outcome string, elapsedSeconds float64) {
	m.CommandsTotal.WithLabelValues(kind, outcome).Inc()
	m.CommandDuration.WithLabelValues(kind).Observe(elapsedSeconds)
}

// ObserveHTTP records one served request. route is the matched route pattern.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsedSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsedSeconds)
}

// CalendarSyncFailed counts a failed calendar operation.
func (m *Metrics) CalendarSyncFailed(op string) {
	m.CalendarSyncFailures.WithLabelValues(op).Inc()
}

// BookingsCompletedAdd counts bookings moved to completed.
func (m *Metrics) BookingsCompletedAdd(n int) {
	if n > 0 {
		m.BookingsCompleted.Add(float64(n))
	}
}

// RateLimitHit counts one rejected request.
func (m *Metrics) RateLimitHit() {
	m.RateLimited.Inc()
}
