// Package workers provides a worker pool for concurrent operations in
// netfold. It supports job queuing, graceful shutdown, and integrates
// with the structured logging system. The scan fan-out runs one job per
// aggregated target over a pool.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netfold/netfold/internal/logging"
)

// Job represents a unit of work to be executed by a worker.
type Job interface {
	// Execute performs the job and returns an error if it fails.
	Execute(ctx context.Context) error
	// ID returns a unique identifier for the job.
	ID() string
	// Type returns the job type for logging.
	Type() string
}

// Result represents the result of executing a job.
type Result struct {
	JobID    string
	JobType  string
	Error    error
	Duration time.Duration
}

// Config holds configuration for the worker pool.
type Config struct {
	// Size is the number of worker goroutines to create.
	Size int
	// QueueSize is the maximum number of jobs that can be queued.
	QueueSize int
	// ShutdownTimeout is the maximum time to wait for workers to finish.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default worker pool configuration.
func DefaultConfig() Config {
	return Config{
		Size:            2,
		QueueSize:       64,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Pool manages a pool of worker goroutines for concurrent job execution.
type Pool struct {
	config    Config
	jobs      chan Job
	results   chan Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a new worker pool with the given configuration. A
// non-positive size or queue size falls back to the defaults.
func New(config Config) *Pool {
	if config.Size <= 0 {
		config.Size = DefaultConfig().Size
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config:  config,
		jobs:    make(chan Job, config.QueueSize),
		results: make(chan Result, config.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines. It is safe to call once; later
// calls are no-ops.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		logging.Debug("Starting worker pool", "size", p.config.Size)
		for i := 0; i < p.config.Size; i++ {
			p.wg.Add(1)
			go p.runWorker(i)
		}
	})
}

// Submit queues a job for execution. It fails when the queue is full or
// the pool is shutting down.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shut down")
	default:
	}

	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shut down")
	default:
		return fmt.Errorf("job queue is full (capacity %d)", p.config.QueueSize)
	}
}

// Close marks the queue complete: no further Submit calls will be
// accepted, and workers drain what is already queued.
func (p *Pool) Close() {
	p.stopOnce.Do(func() {
		close(p.jobs)
	})
}

// Results returns the channel of job results. It is closed after Close
// once all queued jobs have finished.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Wait blocks until all workers have drained the queue, then closes the
// results channel. Callers must Close the pool first.
func (p *Pool) Wait() {
	p.wg.Wait()
	close(p.results)
}

// Shutdown cancels in-flight jobs and waits for workers to exit, up to
// the configured shutdown timeout.
func (p *Pool) Shutdown() error {
	p.Close()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(p.config.ShutdownTimeout):
		return fmt.Errorf("worker pool shutdown timed out after %s", p.config.ShutdownTimeout)
	}
}

// runWorker consumes jobs until the queue is closed or the pool context
// is canceled.
func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(id, job)
		case <-p.ctx.Done():
			return
		}
	}
}

// execute runs a single job and publishes its result.
func (p *Pool) execute(workerID int, job Job) {
	start := time.Now()
	err := job.Execute(p.ctx)
	result := Result{
		JobID:    job.ID(),
		JobType:  job.Type(),
		Error:    err,
		Duration: time.Since(start),
	}

	if err != nil {
		logging.Error("Job failed",
			"worker", workerID,
			"job_id", job.ID(),
			"job_type", job.Type(),
			"duration", result.Duration,
			"error", err)
	} else {
		logging.Debug("Job completed",
			"worker", workerID,
			"job_id", job.ID(),
			"job_type", job.Type(),
			"duration", result.Duration)
	}

	select {
	case p.results <- result:
	case <-p.ctx.Done():
	}
}
