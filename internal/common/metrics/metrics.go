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

	CreditDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_decisions_total",
			Help: "Credit decisions by outcome",
		},
		[]string{"decision"},
	)

	CreditKnockouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_knockouts_total",
			Help: "Applications stopped by a knockout rule",
		},
		[]string{"reason_code"},
	)

	CreditScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_score",
			Help:    "Distribution of final credit scores",
			Buckets: prometheus.LinearBuckets(350, 50, 11),
		},
	)

	CreditManualReviewTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_manual_review_triggers_total",
			Help: "Manual review reasons raised across all decisions",
		},
	)

	DecisionEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_decision_events_total",
			Help: "Decision events by delivery status",
		},
		[]string{"status"},
	)
)
