package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/bloodwork/internal/common"
	"github.com/joseph-ayodele/bloodwork/internal/pipeline"
)

// ErrQueueClosed is returned by Submit after Shutdown has started.
var ErrQueueClosed = errors.New("processor queue is shutting down")

// Processor is the work a queue runs. *pipeline.Processor implements it.
type Processor interface {
	Process(ctx context.Context, path string) (pipeline.Result, error)
}

// Job is one document waiting for a worker.
type Job struct {
	Path        string
	RunID       string
	SubmittedAt time.Time

	ctx   context.Context
	reply chan outcome
}

type outcome struct {
	res pipeline.Result
	err error
}

// ProcessorQueue bounds how many documents are processed at once. OCR is
// CPU heavy, so concurrent requests wait for a free worker instead of all
// running together.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					if err := job.ctx.Err(); err != nil {
						job.reply <- outcome{err: err}
						continue
					}
					q.logger.Debug("worker picked up document", "worker_id", workerID, "run_id", job.RunID,
						"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
					res, err := q.proc.Process(job.ctx, job.Path)
					job.reply <- outcome{res: res, err: err}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit queues path and waits for its result. It gives up when ctx ends,
// whether the job is still queued or already running.
func (q *ProcessorQueue) Submit(ctx context.Context, path string) (pipeline.Result, error) {
	job := Job{
		Path:        path,
		RunID:       common.RunIDFromContext(ctx),
		SubmittedAt: time.Now(),
		ctx:         ctx,
		reply:       make(chan outcome, 1),
	}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", path)
		return pipeline.Result{}, ErrQueueClosed
	}
	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "path", path)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			q.mu.RUnlock()
			return pipeline.Result{}, ctx.Err()
		}
	}
	q.mu.RUnlock()

	select {
	case out := <-job.reply:
		return out.res, out.err
	case <-ctx.Done():
		return pipeline.Result{}, ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish, or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
