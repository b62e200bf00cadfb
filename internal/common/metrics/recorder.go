// internal/common/metrics/recorder.go
package metrics

import (
	"time"
)

// JobTimer tracks one in-flight job for the worker_* series.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active. Call Done exactly once.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Done records the outcome. An empty errorCode counts as completed.
func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

// RecordDecision updates the credit_* series for one evaluated application.
// knockoutCode is empty when the application reached scoring.
func RecordDecision(decision string, score int, knockoutCode string, manualReviewReasons int) {
	CreditDecisions.WithLabelValues(decision).Inc()
	CreditScore.Observe(float64(score))
	if knockoutCode != "" {
		CreditKnockouts.WithLabelValues(knockoutCode).Inc()
	}
	if manualReviewReasons > 0 {
		CreditManualReviewTriggers.Add(float64(manualReviewReasons))
	}
}
