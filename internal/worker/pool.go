package worker

import (
	"context"
	"errors"
	"sync"

	"smartquiz/internal/domain"
	"smartquiz/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner executes a single generation job. The runner owns all failure
// handling; the pool only schedules.
type Runner interface {
	Run(ctx context.Context, job domain.GenerationJob)
}

// ErrQueueFull is returned by Enqueue when the job buffer has no room.
var ErrQueueFull = errors.New("worker: job queue is full")

// Pool is a fixed-size worker pool over a bounded job queue. It
// implements domain.JobQueue.
type Pool struct {
	runner  Runner
	jobs    chan domain.GenerationJob
	group   *errgroup.Group
	mu      sync.Mutex
	started bool
	closed  bool
}

// NewPool creates a pool with the given queue capacity. Start must be
// called before jobs are executed.
func NewPool(runner Runner, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		runner: runner,
		jobs:   make(chan domain.GenerationJob, queueSize),
	}
}

// Start launches n workers. Each worker drains the queue until the
// pool is shut down. Jobs run under context.Background: once accepted
// a job always runs to a terminal status, even during server shutdown.
func (p *Pool) Start(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	if n < 1 {
		n = 1
	}
	p.group = &errgroup.Group{}
	for i := 0; i < n; i++ {
		workerID := i
		p.group.Go(func() error {
			for job := range p.jobs {
				logger.Get().Info("Worker picked up generation job",
					zap.Int("worker_id", workerID),
					zap.String("quiz_id", job.QuizID))
				p.runner.Run(context.Background(), job)
			}
			return nil
		})
	}
	logger.Get().Info("Generation worker pool started",
		zap.Int("workers", n), zap.Int("queue_size", cap(p.jobs)))
}

// Enqueue schedules a job without blocking. A full queue is an error
// the caller surfaces instead of stalling the request path.
func (p *Pool) Enqueue(job domain.GenerationJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("worker: pool is shut down")
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for the queue to drain or
// the context to expire, whichever comes first.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	group := p.group
	p.mu.Unlock()

	if group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
