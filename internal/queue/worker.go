package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	dequeueTimeout = 1 * time.Second
	retryBaseDelay = 5 * time.Second
)

// Worker consumes jobs from the queue and dispatches them to registered
// handlers, one goroutine per job type.
type Worker struct {
	queue    *RedisQueue
	handlers map[JobType]JobHandler
	logger   *slog.Logger
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new worker
func NewWorker(queue *RedisQueue, logger *slog.Logger) *Worker {
	return &Worker{
		queue:    queue,
		handlers: make(map[JobType]JobHandler),
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// RegisterHandler registers a handler for a job type
func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.handlers[jobType] = handler
}

// Start launches one consumer goroutine per registered job type.
func (w *Worker) Start() {
	for jobType := range w.handlers {
		w.wg.Add(1)
		go w.run(jobType)
	}
}

// Stop signals all consumers and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	close(w.quit)
	w.wg.Wait()
}

func (w *Worker) run(jobType JobType) {
	defer w.wg.Done()

	w.logger.Info("worker started", "queue", string(jobType))
	for {
		select {
		case <-w.quit:
			w.logger.Info("worker stopped", "queue", string(jobType))
			return
		default:
			ctx := context.Background()
			job, err := w.queue.Dequeue(ctx, jobType, dequeueTimeout)
			if err != nil {
				w.logger.Error("failed to dequeue job", "queue", string(jobType), "error", err)
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue
			}
			w.dispatch(ctx, jobType, job)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, jobType JobType, job *Job) {
	handler := w.handlers[jobType]

	if err := handler(ctx, *job); err != nil {
		w.logger.Error("job failed",
			"queue", string(jobType),
			"job_id", job.ID,
			"retry_count", job.RetryCount,
			"error", err)

		delay := time.Duration(job.RetryCount+1) * retryBaseDelay
		retried, retryErr := w.queue.Retry(ctx, job, delay)
		if retryErr != nil {
			w.logger.Error("failed to schedule retry", "job_id", job.ID, "error", retryErr)
			return
		}
		if !retried {
			w.logger.Error("job exhausted retries", "queue", string(jobType), "job_id", job.ID)
		}
		return
	}

	w.logger.Info("job completed", "queue", string(jobType), "job_id", job.ID)
}
