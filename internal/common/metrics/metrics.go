// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type", "status"},
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

	SalesOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_operations_total",
			Help: "Sales data-access operations by outcome",
		},
		[]string{"operation", "status"},
	)

	SalesOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sales_operation_duration_seconds",
			Help:    "Duration of sales data-access operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	SalesCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_analytics_cache_requests_total",
			Help: "Analytics cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// ObserveSalesOperation records one sales operation with its outcome.
func ObserveSalesOperation(operation, status string, started time.Time) {
	SalesOperations.WithLabelValues(operation, status).Inc()
	SalesOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveJob records a completed job.
func ObserveJob(taskType, status string, started time.Time) {
	WorkerJobsCompleted.WithLabelValues(taskType, status).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
}

// ObserveJobFailure records a failed job.
func ObserveJobFailure(taskType, errorCode string, started time.Time) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
}
