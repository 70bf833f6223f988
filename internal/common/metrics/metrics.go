// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_aggregations_total",
			Help: "Aggregator operations by name and outcome",
		},
		[]string{"operation", "status"},
	)

	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devtogether_aggregation_duration_seconds",
			Help:    "Duration of aggregator operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DegradedReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_degraded_reads_total",
			Help: "Reads that fell back to a default value",
		},
		[]string{"operation", "field"},
	)

	ProfileViewsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_profile_views_total",
			Help: "Profile view tracking outcomes",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devtogether_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	SearchIndexSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtogether_search_index_syncs_total",
			Help: "Project index synchronisation runs",
		},
		[]string{"status"},
	)

	SearchIndexedDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devtogether_search_indexed_documents",
			Help: "Projects written by the last index synchronisation",
		},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// ObserveAggregation records the outcome and duration of an aggregator operation.
func ObserveAggregation(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AggregationsTotal.WithLabelValues(operation, status).Inc()
	AggregationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Degraded counts a read that fell back to its default.
func Degraded(operation, field string) {
	DegradedReads.WithLabelValues(operation, field).Inc()
}
