// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billar"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Ledger metrics
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_commands_total",
			Help:      "Ledger commands by name and result",
		},
		[]string{"command", "result"},
	)

	StateSaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_save_duration_seconds",
			Help:      "Duration of full state saves in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SoftFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "soft_failures_total",
		Help:      "Best-effort steps that failed and were ignored",
	})

	// Snapshot metrics
	SnapshotsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_created_total",
			Help:      "Snapshots created by reason",
		},
		[]string{"reason"},
	)

	// Sync metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync operations by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_breaker_state",
		Help:      "Remote circuit breaker state (0 closed, 1 open, 2 half-open)",
	})
)

// TrackSave returns a function that records the duration of a state save.
func TrackSave(source string) func(start time.Time) {
	return func(start time.Time) {
		StateSaveDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
}

// RecordCommand counts one ledger command.
func RecordCommand(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CommandsTotal.WithLabelValues(name, result).Inc()
}

// RecordSync counts one sync run.
func RecordSync(direction, outcome string) {
	SyncRunsTotal.WithLabelValues(direction, outcome).Inc()
}
