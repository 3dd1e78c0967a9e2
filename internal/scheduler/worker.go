package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// TaskHandler processes one claimed task. On success the task is acked
// and removed; a returned error is logged and the task is left on its
// lease, so the queue redelivers it once the lease expires.
type TaskHandler func(ctx context.Context, task Task) error

const claimBatchSize = 64

// Worker polls the queue and fans claimed tasks out to a fixed pool.
type Worker struct {
	queue        Queue
	logger       *zap.Logger
	metrics      *observability.Metrics
	pollInterval time.Duration
	workers      int

	mu       sync.RWMutex
	handlers map[string]TaskHandler
}

// NewWorker constructs a worker pool over the queue.
func NewWorker(queue Queue, logger *zap.Logger, metrics *observability.Metrics, pollInterval time.Duration, workers int) *Worker {
	if workers < 1 {
		workers = 1
	}
	return &Worker{
		queue:        queue,
		logger:       logger,
		metrics:      metrics,
		pollInterval: pollInterval,
		workers:      workers,
		handlers:     make(map[string]TaskHandler),
	}
}

// Register binds a handler to a task kind. Tasks of unregistered kinds
// are acked away with a log line.
func (w *Worker) Register(kind string, handler TaskHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = handler
}

// Run blocks until ctx is canceled, polling for due tasks and
// dispatching them to the pool. In-flight tasks finish before return.
func (w *Worker) Run(ctx context.Context) {
	tasks := make(chan Task)
	var wg sync.WaitGroup

	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				w.process(ctx, task)
			}
		}()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

poll:
	for {
		select {
		case <-ctx.Done():
			break poll
		case <-ticker.C:
			claimed, err := w.queue.Claim(ctx, time.Now(), claimBatchSize)
			if err != nil {
				if ctx.Err() == nil {
					w.logger.Error("failed to claim due tasks", zap.Error(err))
				}
				continue
			}
			for _, task := range claimed {
				select {
				case tasks <- task:
				case <-ctx.Done():
					break poll
				}
			}
		}
	}

	close(tasks)
	wg.Wait()
}

func (w *Worker) process(ctx context.Context, task Task) {
	w.mu.RLock()
	handler, ok := w.handlers[task.Kind]
	w.mu.RUnlock()
	if !ok {
		w.logger.Warn("no handler for task kind",
			zap.String("task_id", task.ID),
			zap.String("kind", task.Kind))
		w.metrics.RecordTaskProcessed(task.Kind, "unhandled")
		w.ack(ctx, task)
		return
	}

	if err := handler(ctx, task); err != nil {
		// Leave the lease in place; the queue redelivers the task
		// after it expires.
		w.logger.Error("task handler failed",
			zap.String("task_id", task.ID),
			zap.String("kind", task.Kind),
			zap.Error(err))
		w.metrics.RecordTaskProcessed(task.Kind, "error")
		return
	}
	w.metrics.RecordTaskProcessed(task.Kind, "ok")
	w.ack(ctx, task)
}

// ack survives shutdown: a finished task must not be redelivered just
// because ctx was canceled mid-flight.
func (w *Worker) ack(ctx context.Context, task Task) {
	if err := w.queue.Ack(context.WithoutCancel(ctx), task); err != nil {
		w.logger.Warn("failed to ack task",
			zap.String("task_id", task.ID),
			zap.String("kind", task.Kind),
			zap.Error(err))
	}
}
