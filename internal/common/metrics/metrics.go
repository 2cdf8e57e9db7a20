// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_search_runs_total",
			Help: "Total number of pipeline runs by search mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	FragmentsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_fragments_received_total",
			Help: "Total number of raw fragments returned by the search provider",
		},
	)

	FragmentsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_fragments_dropped_total",
			Help: "Total number of fragments dropped before ranking",
		},
		[]string{"reason"},
	)

	ListingsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "listing_results_per_run",
			Help:    "Number of listings returned per run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	TrustScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_trust_score",
			Help:    "Distribution of trust scores by source",
			Buckets: []float64{20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"source"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "listing_search_duration_seconds",
			Help: "Duration of pipeline runs in seconds",
		},
		[]string{"mode"},
	)

	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_provider_requests_total",
			Help: "Total number of search provider requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_provider_rate_limited_total",
			Help: "Total number of provider calls rejected by the rate limiter",
		},
		[]string{"provider"},
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
