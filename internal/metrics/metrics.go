// Package metrics declares the Prometheus collectors of the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of gateway HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Upstream inventory API metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_api_request_duration_seconds",
			Help:    "Duration of inventory API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_api_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_api_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Recommendation comparison metrics
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_comparisons_total",
			Help: "Recommendation comparisons computed, by result",
		},
		[]string{"result"},
	)

	ComparisonConflicts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_comparison_conflicts",
			Help: "Number of conflicts found by the most recent comparison",
		},
	)

	SnapshotWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_snapshot_write_errors_total",
			Help: "Comparison snapshots that could not be stored",
		},
	)
)

// ObserveUpstream records one inventory API call.
func ObserveUpstream(endpoint, outcome string, d time.Duration) {
	UpstreamRequestDuration.WithLabelValues(endpoint, outcome).Observe(d.Seconds())
}

// ObserveHTTP records one gateway request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
