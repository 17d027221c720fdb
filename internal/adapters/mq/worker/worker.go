// Package worker runs queued match jobs on a pool of goroutines. Workers
// are stateless: all pipeline state lives in the runner they delegate to.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/grantwise/matchd/internal/adapters/mq/queue"
	"github.com/grantwise/matchd/pkg/logger"
	"github.com/grantwise/matchd/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2
	workerShutdownTimeout   = 5 * time.Second
)

// Runner executes one match pipeline run.
type Runner interface {
	RunMatch(ctx context.Context, profileID string) error
}

// JobSource defines how workers receive jobs.
type JobSource interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker drains jobs from the source and hands them to the runner.
type Worker struct {
	source JobSource
	runner Runner
	name   string

	shutdown chan struct{}
	done     chan struct{}
	logger   logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker with configuration options.
func NewWorker(source JobSource, runner Runner, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		runner:   runner,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until ctx is canceled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight job.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

// process runs one job. A failed run is logged; the worker keeps going.
func (w *Worker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	err := w.runner.RunMatch(ctx, job.ProfileID)
	metrics.RecordJobLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordJobError()
		w.logger.Error(ctx, "match run failed",
			logger.String("jobID", job.JobID),
			logger.String("profileID", job.ProfileID),
			logger.String("reason", job.Reason),
			logger.Error(err),
		)
		return
	}
	metrics.RecordJobProcessed()
}

// Pool manages a fixed set of workers over one job source.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers; a non-positive count defaults to
// a multiple of the CPU count.
func NewPool(workerCount int, source JobSource, runner Runner) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{workers: make([]*Worker, workerCount)}
	for i := range p.workers {
		p.workers[i] = NewWorker(source, runner, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts all workers down, bounded per worker.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}
