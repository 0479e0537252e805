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

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergency_classifications_total",
			Help: "Utterances classified, by category and severity",
		},
		[]string{"category", "severity"},
	)

	ClassificationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emergency_classification_confidence",
			Help:    "Confidence of classified utterances",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergency_escalations_total",
			Help: "Escalation actions decided, by action",
		},
		[]string{"action"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emergency_notifications_total",
			Help: "Contact notifications attempted, by channel and status",
		},
		[]string{"channel", "status"},
	)

	GuidanceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guidance_lookups_total",
			Help: "Guidance lookups, by source (cache, search, builtin)",
		},
		[]string{"source"},
	)
)
