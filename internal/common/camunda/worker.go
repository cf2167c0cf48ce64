// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"keyword-intelligence/internal/common/logger"
)

// JobHandler is implemented by every keyword worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
	Concurrency   int
}

// WorkerGroup opens job workers and closes them together on shutdown.
type WorkerGroup struct {
	client zbc.Client
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerGroup(client zbc.Client, log logger.Logger) *WorkerGroup {
	return &WorkerGroup{client: client, logger: log, workers: make(map[string]worker.JobWorker)}
}

func (g *WorkerGroup) Register(opts WorkerOptions, handler JobHandler) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.workers[opts.TaskType]; exists {
		return fmt.Errorf("worker for %s already registered", opts.TaskType)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	jw := g.client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(handler.Handle).
		MaxJobsActive(opts.MaxJobsActive).
		Concurrency(concurrency).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("%s-worker", opts.TaskType)).
		Open()
	g.workers[opts.TaskType] = jw

	g.logger.Info("Worker registered", map[string]interface{}{
		"taskType":      opts.TaskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
		"concurrency":   concurrency,
	})
	return nil
}

func (g *WorkerGroup) TaskTypes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.workers))
	for t := range g.workers {
		out = append(out, t)
	}
	return out
}

// Close stops polling and waits for in-flight jobs of every worker.
func (g *WorkerGroup) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for taskType, jw := range g.workers {
		jw.Close()
		jw.AwaitClose()
		g.logger.Info("Worker stopped", map[string]interface{}{"taskType": taskType})
	}
	g.workers = make(map[string]worker.JobWorker)
}
