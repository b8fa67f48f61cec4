// Package workers provides the background worker pool that executes
// scan jobs for ScanPro. It supports bounded job queuing, graceful
// shutdown, and integrates with the structured logging and metrics
// systems.
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MAS191/ScanPro/internal/logging"
	"github.com/MAS191/ScanPro/internal/metrics"
)

// Job represents a unit of work to be executed by a worker.
type Job interface {
	// Execute performs the job and returns an error if it fails.
	Execute(ctx context.Context) error
	// ID returns a unique identifier for the job.
	ID() string
	// Type returns the job type for metrics and logging.
	Type() string
}

// Result represents the outcome of executing a job.
type Result struct {
	JobID    string
	JobType  string
	Error    error
	Duration time.Duration
}

// Config holds configuration for the worker pool.
type Config struct {
	// Workers is the number of worker goroutines to create.
	Workers int
	// QueueSize is the maximum number of jobs that can be queued.
	QueueSize int
	// ShutdownTimeout is the maximum time to wait for in-flight jobs
	// before they are canceled.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default worker pool configuration.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		QueueSize:       32,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Pool manages a fixed set of worker goroutines executing queued jobs.
type Pool struct {
	config          Config
	jobs            chan Job
	results         chan Result
	externalResults chan Result
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
	done            chan struct{}
	startOnce       sync.Once
	closeOnce       sync.Once

	mu      sync.RWMutex
	started bool
	stopped bool
}

// New creates a new worker pool with the given configuration.
func New(config Config) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		config:          config,
		jobs:            make(chan Job, config.QueueSize),
		results:         make(chan Result, config.QueueSize),
		externalResults: make(chan Result, config.QueueSize),
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
	}
}

// Start begins the worker pool operations.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return
		}
		p.started = true
		p.mu.Unlock()

		logging.Info("Starting worker pool",
			"workers", p.config.Workers,
			"queue_size", p.config.QueueSize)

		for i := 0; i < p.config.Workers; i++ {
			p.wg.Add(1)
			go p.runWorker(i)
		}

		go p.processResults()

		metrics.Gauge("worker_pool_size", float64(p.config.Workers), metrics.Labels{
			metrics.LabelComponent: "workers",
		})
	})
}

// Submit adds a job to the worker pool queue. It never blocks: when
// the queue is full the job is rejected and the caller decides how to
// surface that.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return fmt.Errorf("worker pool is shut down")
	}

	select {
	case p.jobs <- job:
		logging.Debug("Job submitted to worker pool",
			"job_id", job.ID(),
			"job_type", job.Type())
		metrics.IncrementJobsSubmitted(job.Type())
		metrics.SetJobQueueDepth(len(p.jobs))
		return nil
	default:
		return fmt.Errorf("job queue is full")
	}
}

// Results returns a channel for receiving job results. The channel is
// closed when the pool shuts down; a consumer that falls behind misses
// results rather than blocking the pool.
func (p *Pool) Results() <-chan Result {
	return p.externalResults
}

// Shutdown gracefully shuts down the worker pool: intake stops, queued
// jobs are drained, and in-flight jobs get ShutdownTimeout before
// their context is canceled.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	close(p.jobs)
	p.mu.Unlock()

	logging.Info("Shutting down worker pool")

	workersDone := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(workersDone)
	}()

	var err error
	select {
	case <-workersDone:
		logging.Info("Worker pool shutdown completed")
	case <-time.After(p.config.ShutdownTimeout):
		logging.Warn("Worker pool shutdown timed out, canceling in-flight jobs")
		p.cancel()
		<-workersDone
		err = fmt.Errorf("worker pool shutdown timed out after %s", p.config.ShutdownTimeout)
	}

	p.cancel()
	close(p.results)

	if started {
		<-p.done
	} else {
		p.closeOnce.Do(func() {
			close(p.done)
		})
	}
	close(p.externalResults)

	return err
}

// Wait blocks until the pool has fully shut down.
func (p *Pool) Wait() {
	<-p.done
}

// runWorker executes the worker loop. Workers keep draining the queue
// after shutdown starts so already accepted jobs still run.
func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	logging.Debug("Worker started", "worker_id", id)
	defer logging.Debug("Worker stopped", "worker_id", id)

	for job := range p.jobs {
		metrics.SetJobQueueDepth(len(p.jobs))
		p.executeJob(id, job)
	}
}

// executeJob runs a single job and reports its result.
func (p *Pool) executeJob(workerID int, job Job) {
	logging.Debug("Job started",
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID)

	start := time.Now()
	err := job.Execute(p.ctx)
	duration := time.Since(start)

	if err != nil {
		logging.ErrorJob("Job failed", job.ID(), err,
			"job_type", job.Type(),
			"worker_id", workerID,
			"duration", duration)
	} else {
		logging.Debug("Job completed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"worker_id", workerID,
			"duration", duration)
	}

	p.results <- Result{
		JobID:    job.ID(),
		JobType:  job.Type(),
		Error:    err,
		Duration: duration,
	}
}

// processResults records metrics for finished jobs and fans results
// out to external consumers.
func (p *Pool) processResults() {
	defer p.closeOnce.Do(func() {
		close(p.done)
	})

	for result := range p.results {
		select {
		case p.externalResults <- result:
		default:
			// External consumer not reading, drop rather than stall
		}

		switch {
		case result.Error == nil:
			metrics.IncrementJobsCompleted(result.JobType)
		case errors.Is(result.Error, context.Canceled):
			metrics.IncrementJobsCanceled(result.JobType)
		default:
			metrics.IncrementJobsFailed(result.JobType)
		}
		metrics.RecordJobDuration(result.JobType, result.Duration)
	}
}

// FuncJob adapts a closure to the Job interface. The jobs manager and
// the scheduler submit their work through it.
type FuncJob struct {
	id      string
	jobType string
	fn      func(ctx context.Context) error
}

// NewFuncJob creates a job that runs fn when executed.
func NewFuncJob(id, jobType string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{
		id:      id,
		jobType: jobType,
		fn:      fn,
	}
}

// Execute implements the Job interface.
func (j *FuncJob) Execute(ctx context.Context) error {
	return j.fn(ctx)
}

// ID implements the Job interface.
func (j *FuncJob) ID() string {
	return j.id
}

// Type implements the Job interface.
func (j *FuncJob) Type() string {
	return j.jobType
}
