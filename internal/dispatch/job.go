// internal/dispatch/job.go
package dispatch

import (
	"time"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/types"
)

// JobStatus represents the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusFailed   JobStatus = "failed"
)

// Job tracks a single prompt execution against a session.
type Job struct {
	ID        types.JobID
	ToolType  types.ToolType
	Request   agent.Request
	Callbacks *agent.Callbacks
	Status    JobStatus
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time

	// Result is set by the processor once the execution settles.
	Result *types.ExecutionResult
	// OnComplete, if set, receives the settled result.
	OnComplete func(*types.ExecutionResult)
}

// NewJob creates a Job in the Queued state for the given tool and request.
func NewJob(toolType types.ToolType, req agent.Request) *Job {
	return &Job{
		ID:        types.NewJobID(),
		ToolType:  toolType,
		Request:   req,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
	}
}
