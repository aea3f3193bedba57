package jobs

import (
	"time"

	"github.com/buemura/scamscan/pkg/types"
)

// JobStatus represents the current state of an analysis job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job represents an async message analysis.
type Job struct {
	ID          string             `json:"id"`
	Message     string             `json:"message"`
	Status      JobStatus          `json:"status"`
	Outcome     *types.ScanOutcome `json:"outcome,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   time.Time          `json:"started_at,omitempty"`
	CompletedAt time.Time          `json:"completed_at,omitempty"`
}

// FindingCount returns the number of findings in the job's outcome.
func (j Job) FindingCount() int {
	if j.Outcome == nil {
		return 0
	}
	return len(j.Outcome.Findings)
}

// clone returns a copy that shares nothing mutable with j.
func (j *Job) clone() Job {
	c := *j
	if j.Outcome != nil {
		o := *j.Outcome
		c.Outcome = &o
	}
	return c
}
