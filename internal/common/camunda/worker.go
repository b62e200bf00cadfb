// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"credit-decision-workers/internal/common/config"
)

// JobHandlerFunc matches the Zeebe job handler signature.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// JobOpener is the part of zbc.Client needed to open job workers.
type JobOpener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

// WorkerSet opens job workers and closes them together on shutdown.
type WorkerSet struct {
	client JobOpener
	logger *zap.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerSet(client JobOpener, logger *zap.Logger) *WorkerSet {
	return &WorkerSet{
		client:  client,
		logger:  logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled. It reports
// whether a worker was opened.
func (s *WorkerSet) Start(taskType string, wcfg config.WorkerConfig, handler JobHandlerFunc) bool {
	if !wcfg.Enabled {
		s.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jobWorker := s.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	s.mu.Lock()
	s.workers[taskType] = jobWorker
	s.mu.Unlock()

	s.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

// Running returns the task types with an open worker.
func (s *WorkerSet) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.workers))
	for taskType := range s.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops polling and waits up to timeout for in-flight jobs.
func (s *WorkerSet) Close(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for taskType, w := range s.workers {
			s.logger.Info("stopping worker", zap.String("taskType", taskType))
			w.Close()
			w.AwaitClose()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("workers did not stop in time", zap.Duration("timeout", timeout))
	}
	s.workers = make(map[string]worker.JobWorker)
}
