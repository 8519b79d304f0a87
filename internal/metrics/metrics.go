// Package metrics provides Prometheus metrics for the session relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PropagationTotal counts per-satellite fan-out calls.
	PropagationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssohub",
			Name:      "propagation_total",
			Help:      "Total number of per-satellite propagation calls",
		},
		[]string{"operation", "service", "status"},
	)

	// PropagationDuration measures per-satellite call duration.
	PropagationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssohub",
			Name:      "propagation_duration_seconds",
			Help:      "Duration of per-satellite propagation calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "service"},
	)

	// SessionsEstablished counts satellite-side session creations.
	SessionsEstablished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssohub",
			Name:      "sessions_established_total",
			Help:      "Total number of session establishment attempts",
		},
		[]string{"source", "status"},
	)

	// SignoutsTotal counts signout operations.
	SignoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssohub",
			Name:      "signouts_total",
			Help:      "Total number of signout operations",
		},
		[]string{"kind", "status"},
	)
)

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordPropagation records one satellite call.
func RecordPropagation(operation, service string, ok bool, seconds float64) {
	PropagationTotal.WithLabelValues(operation, service, status(ok)).Inc()
	PropagationDuration.WithLabelValues(operation, service).Observe(seconds)
}

// RecordSessionEstablished records a session establishment attempt.
func RecordSessionEstablished(source string, ok bool) {
	SessionsEstablished.WithLabelValues(source, status(ok)).Inc()
}

// RecordSignout records a signout operation.
func RecordSignout(kind string, ok bool) {
	SignoutsTotal.WithLabelValues(kind, status(ok)).Inc()
}
