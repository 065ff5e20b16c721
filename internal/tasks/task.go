// Package tasks tracks formatting jobs: their records, lifecycle, and
// the worker pool that executes them.
package tasks

import (
	"time"

	"github.com/google/uuid"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/report"
)

// Status represents the current state of a task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Task is one formatting job record. Progress fields are updated by
// the pool as the pipeline advances; everything is guarded by the
// manager's lock.
type Task struct {
	ID       string `json:"task_id"`
	Filename string `json:"filename"`
	Status   Status `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// CurrentPass and the counters expose pipeline progress for
	// polling clients.
	CurrentPass string `json:"current_pass,omitempty"`
	PassesDone  int    `json:"passes_done"`
	PassesTotal int    `json:"passes_total"`

	Error  string         `json:"error,omitempty"`
	Report *report.Report `json:"report,omitempty"`

	// DisabledPasses lists pipeline passes skipped for this task only.
	DisabledPasses []string `json:"disabled_passes,omitempty"`

	InputPath  string          `json:"-"`
	OutputPath string          `json:"-"`
	Meta       config.Metadata `json:"-"`
}

// newTask builds a queued task with a fresh ID.
func newTask(filename, inputPath string, meta config.Metadata) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
		Meta:      meta,
		InputPath: inputPath,
	}
}

// clone returns a copy safe to hand to callers outside the manager's
// lock. The report pointer is shared but never mutated after the task
// completes.
func (t *Task) clone() *Task {
	c := *t
	return &c
}
