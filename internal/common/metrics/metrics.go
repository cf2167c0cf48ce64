// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

var (
	KeywordsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwintel_keywords_classified_total",
			Help: "Keywords classified, by resulting intent and confidence level",
		},
		[]string{"intent", "confidence_level"},
	)

	ClassificationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwintel_classification_cache_lookups_total",
			Help: "Classification cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ModelTrainings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kwintel_model_trainings_total",
			Help: "Intent models trained and published",
		},
	)

	ModelAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kwintel_model_accuracy",
			Help: "Hold-out accuracy of the most recently trained intent model",
		},
	)

	ClustersProduced = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kwintel_clusters_per_run",
			Help:    "Clusters produced per clustering run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"method"},
	)

	CannibalizationPairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwintel_cannibalization_pairs_total",
			Help: "Cannibalizing keyword pairs detected, by report severity",
		},
		[]string{"severity"},
	)

	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kwintel_alerts_sent_total",
			Help: "Cannibalization alerts sent, by channel and outcome",
		},
		[]string{"channel", "status"},
	)
)
