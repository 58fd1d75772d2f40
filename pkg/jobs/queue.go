package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueFull is returned by Submit when the buffer has no room.
var ErrQueueFull = errors.New("jobs: queue full")

// ErrQueueClosed is returned by Submit before Start or after Stop.
var ErrQueueClosed = errors.New("jobs: queue closed")

// Job is a unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a job. Errors are logged and the job is dropped.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Queue is an in-memory job dispatcher backed by a fixed worker pool.
// Submit never blocks, so request handlers can hand work off without
// waiting on slow consumers. Stop drains jobs already accepted.
type Queue struct {
	name    string
	handler Handler
	workers int
	logger  *zap.Logger

	jobs chan Job
	wg   sync.WaitGroup
	mu   sync.RWMutex
	open bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		workers: cfg.Workers,
		logger:  cfg.Logger,
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Jobs run with ctx; calling Start twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.open {
		return
	}
	q.open = true
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop refuses new jobs, waits for accepted ones to finish and returns.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.open {
		q.mu.Unlock()
		return
	}
	q.open = false
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Submit hands a job to the workers without blocking.
func (q *Queue) Submit(jobType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.open {
		return ErrQueueClosed
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: payload, Enqueued: time.Now().UTC()}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for job := range q.jobs {
		if err := q.handler(ctx, job); err != nil {
			q.logger.Warn("job failed",
				zap.String("queue", q.name),
				zap.String("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Error(err),
			)
		}
	}
}
