// Package metrics holds the Prometheus instruments of bizlens.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for view executions.
const (
	OutcomeOK         = "ok"
	OutcomeNoData     = "no_data"
	OutcomeValidation = "validation"
	OutcomeStore      = "store"
	OutcomeOther      = "other"
)

var (
	// View metrics
	ViewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizlens_view_duration_seconds",
			Help:    "Duration of analytical view computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	ViewRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bizlens_view_rows",
			Help:    "Number of rows returned by a view",
			Buckets: []float64{0, 1, 5, 15, 30, 100, 504, 1000, 5000},
		},
		[]string{"view"},
	)

	ViewExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizlens_view_executions_total",
			Help: "Total number of view executions by outcome",
		},
		[]string{"view", "outcome"},
	)

	DashboardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bizlens_dashboard_duration_seconds",
			Help:    "Duration of full dashboard runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Snapshot metrics
	SnapshotEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bizlens_snapshot_entities",
			Help: "Number of entities in the loaded snapshot",
		},
		[]string{"entity"},
	)

	SnapshotLoadDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bizlens_snapshot_load_seconds",
			Help: "Time taken by the last snapshot load",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizlens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

// ObserveView records one view execution. rows is ignored unless the
// outcome is OutcomeOK.
func ObserveView(view string, duration time.Duration, rows int, outcome string) {
	ViewDuration.WithLabelValues(view).Observe(duration.Seconds())
	ViewExecutions.WithLabelValues(view, outcome).Inc()
	if outcome == OutcomeOK {
		ViewRows.WithLabelValues(view).Observe(float64(rows))
	}
}

// ObserveDashboard records one dashboard run.
func ObserveDashboard(duration time.Duration) {
	DashboardDuration.Observe(duration.Seconds())
}

// RecordSnapshot publishes entity counts and load time of a snapshot.
func RecordSnapshot(counts map[string]int, took time.Duration) {
	for entity, n := range counts {
		SnapshotEntities.WithLabelValues(entity).Set(float64(n))
	}
	SnapshotLoadDuration.Set(took.Seconds())
}

// RecordAPIRequest counts one API request.
func RecordAPIRequest(method, endpoint, status string) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
