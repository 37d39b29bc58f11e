// internal/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/types"
)

// Dispatcher routes queued jobs to the adapter registered for their
// tool type. It owns the queue lifecycle.
type Dispatcher struct {
	registry *agent.Registry
	Queue    *Queue

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Dispatcher wired to the adapter registry with the given
// concurrency limit for simultaneous executions.
func New(registry *agent.Registry, maxConcurrent ...int64) *Dispatcher {
	var concurrency int64 = 2
	if len(maxConcurrent) > 0 && maxConcurrent[0] > 0 {
		concurrency = maxConcurrent[0]
	}
	d := &Dispatcher{
		registry: registry,
		Queue:    NewQueue(concurrency),
	}
	d.Queue.SetProcessor(d.process)
	return d
}

// Start initialises the dispatcher's context and starts the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.Queue.Start(d.ctx)
}

// Stop cancels the dispatcher context and stops the queue.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.Queue.Stop()
}

// JobOption configures optional behavior on a Job.
type JobOption func(*Job)

// WithCallbacks attaches streaming callbacks to the job's execution.
func WithCallbacks(cb *agent.Callbacks) JobOption {
	return func(j *Job) { j.Callbacks = cb }
}

// WithOnComplete sets a callback invoked when the job settles.
func WithOnComplete(fn func(*types.ExecutionResult)) JobOption {
	return func(j *Job) { j.OnComplete = fn }
}

// Submit wraps a request in a Job and enqueues it on the session's lane.
func (d *Dispatcher) Submit(toolType types.ToolType, req agent.Request, opts ...JobOption) (*Job, error) {
	if _, err := d.registry.For(toolType); err != nil {
		return nil, err
	}
	job := NewJob(toolType, req)
	for _, opt := range opts {
		opt(job)
	}
	if err := d.Queue.Enqueue(job); err != nil {
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	return job, nil
}

// Execute runs one request synchronously, bypassing the queue. Used by
// the CLI, where there is exactly one job at a time.
func (d *Dispatcher) Execute(ctx context.Context, toolType types.ToolType, req agent.Request, cb *agent.Callbacks) (*types.ExecutionResult, error) {
	a, err := d.registry.For(toolType)
	if err != nil {
		return nil, err
	}
	return a.ExecutePromptWithStreaming(ctx, req, cb), nil
}

// process is the queue processor: it resolves the adapter, runs the
// execution, and records lifecycle timestamps on the job.
func (d *Dispatcher) process(job *Job) error {
	a, err := d.registry.For(job.ToolType)
	if err != nil {
		job.Status = JobStatusFailed
		return err
	}

	now := time.Now()
	job.StartedAt = &now
	job.Status = JobStatusRunning

	res := a.ExecutePromptWithStreaming(d.ctx, job.Request, job.Callbacks)

	ended := time.Now()
	job.EndedAt = &ended
	job.Result = res
	if res.Err != "" {
		job.Status = JobStatusFailed
	} else {
		job.Status = JobStatusComplete
	}

	if job.OnComplete != nil {
		job.OnComplete(res)
	}
	return nil
}
