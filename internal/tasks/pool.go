package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/thesistools/thesisfmt/internal/report"
)

// ErrQueueFull is returned by Submit when the pool queue is at
// capacity.
var ErrQueueFull = errors.New("task queue full")

// Handler executes one task: load the input, run the pipeline, write
// the output. It must respect context cancellation and report progress
// through the callback. On success it returns the run report and the
// output path; on cancellation it must discard any partial output and
// return the context error.
type Handler func(ctx context.Context, t *Task, progress func(pass string, done, total int)) (*report.Report, string, error)

// Pool runs queued tasks on a fixed set of workers. All workers pull
// from a single shared queue.
type Pool struct {
	logger      *slog.Logger
	manager     *Manager
	handler     Handler
	workerCount int

	queue    chan string
	inFlight atomic.Int32
}

// PoolConfig configures a new pool.
type PoolConfig struct {
	Logger      *slog.Logger
	Manager     *Manager
	Handler     Handler
	WorkerCount int
	QueueSize   int
}

// PoolStatus is a point-in-time view of the pool.
type PoolStatus struct {
	Workers    int `json:"workers"`
	InFlight   int `json:"in_flight"`
	QueueDepth int `json:"queue_depth"`
}

// NewPool creates a pool. Workers are started by Start.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		logger:      logger.With("component", "pool", "workers", workerCount),
		manager:     cfg.Manager,
		handler:     cfg.Handler,
		workerCount: workerCount,
		queue:       make(chan string, queueSize),
	}
}

// Start begins processing. Blocks until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(ctx, i)
	}
	<-ctx.Done()
	p.logger.Info("pool stopping")
}

// Submit queues a task for execution.
func (p *Pool) Submit(taskID string) error {
	select {
	case p.queue <- taskID:
		p.logger.Debug("task queued", "task_id", taskID, "queue_len", len(p.queue))
		return nil
	default:
		p.logger.Warn("task queue full", "task_id", taskID)
		return ErrQueueFull
	}
}

// Status returns the current pool status.
func (p *Pool) Status() PoolStatus {
	return PoolStatus{
		Workers:    p.workerCount,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
	}
}

// worker pulls task IDs from the shared queue and runs them.
func (p *Pool) worker(ctx context.Context, id int) {
	p.logger.Debug("worker started", "worker_id", id)
	for {
		select {
		case <-ctx.Done():
			return
		case taskID := <-p.queue:
			p.inFlight.Add(1)
			p.run(ctx, taskID)
			p.inFlight.Add(-1)
		}
	}
}

// run executes one task and records its terminal status.
func (p *Pool) run(ctx context.Context, taskID string) {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !p.manager.markRunning(taskID, cancel) {
		// Cancelled or removed while queued.
		p.logger.Debug("task skipped", "task_id", taskID)
		return
	}

	t, err := p.manager.Get(taskID)
	if err != nil {
		return
	}

	rep, outputPath, err := p.handler(taskCtx, t, func(pass string, done, total int) {
		p.manager.setProgress(taskID, pass, done, total)
	})

	switch {
	case errors.Is(err, context.Canceled):
		p.manager.finish(taskID, StatusCancelled, rep, "cancelled", "")
		p.logger.Info("task cancelled", "task_id", taskID)
	case err != nil:
		p.manager.finish(taskID, StatusFailed, rep, err.Error(), "")
		p.logger.Warn("task failed", "task_id", taskID, "error", err)
	default:
		p.manager.finish(taskID, StatusCompleted, rep, "", outputPath)
		p.logger.Info("task completed", "task_id", taskID, "output", outputPath)
	}
}
