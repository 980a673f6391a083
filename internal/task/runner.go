package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/metrics"
)

// Common errors returned by the Runner
var (
	ErrQueueFull    = errors.New("generation queue is full")
	ErrRunnerClosed = errors.New("runner is shut down")
)

// Job is a unit of background work. Execute must itself drive whatever it
// tracks to a terminal state; the runner only logs failures, it does not
// own job bookkeeping.
type Job interface {
	// ID returns an identifier used for logging.
	ID() string

	// Execute runs the job logic.
	Execute(ctx context.Context) error
}

// RunnerConfig holds configuration for the background runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue.
	// Enqueue rejects jobs once the buffer is full rather than spawning
	// unbounded goroutines.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages a bounded pool of worker goroutines consuming a buffered
// job queue. It handles graceful shutdown and worker lifecycle.
type Runner struct {
	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewRunner creates a new Runner with the specified configuration.
func NewRunner(cfg RunnerConfig, log *slog.Logger) *Runner {
	if cfg.WorkerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Runner{
		jobs:   make(chan Job, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: log,
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	return r
}

// Enqueue adds a job to the queue for processing.
// Returns ErrQueueFull if the queue is saturated and ErrRunnerClosed after
// shutdown.
func (r *Runner) Enqueue(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunnerClosed
	}

	select {
	case r.jobs <- job:
		metrics.SetQueueDepth(len(r.jobs))
		r.logger.Debug("job enqueued",
			"job_id", job.ID(),
			"queue_len", len(r.jobs),
			"queue_cap", cap(r.jobs))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the runner down gracefully: no further jobs are accepted, and
// already-queued jobs are drained before workers exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
	r.cancel()
	r.logger.Info("runner stopped")
}

// worker consumes jobs until the queue is closed and drained.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for job := range r.jobs {
		metrics.SetQueueDepth(len(r.jobs))

		log := r.logger.With(
			"job_id", job.ID(),
			"worker_id", id,
		)

		log.Info("processing job")
		if err := job.Execute(r.ctx); err != nil {
			log.Error("job execution failed", "error", err)
		} else {
			log.Info("job completed")
		}
	}

	r.logger.Debug("job channel closed, stopping worker", "worker_id", id)
}
