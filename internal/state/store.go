// Package state records the history of sampling and validation runs in a
// local SQLite database.
package state

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// RunKind names the command that produced a run.
type RunKind string

// Run kinds.
const (
	RunKindSample   RunKind = "sample"
	RunKindValidate RunKind = "validate"
)

// RunStatus represents the outcome of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// TableStatus is the outcome of one table within a run.
type TableStatus string

// Table statuses.
const (
	TableStatusSuccess TableStatus = "success"
	TableStatusFailed  TableStatus = "failed"
)

// Run is one sample or validate invocation.
type Run struct {
	ID          string     `json:"id"`
	Kind        RunKind    `json:"kind"`
	Model       string     `json:"model"`
	Target      string     `json:"target,omitempty"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// TableRun is the outcome of one table within a run.
type TableRun struct {
	RunID    string        `json:"-"`
	Table    string        `json:"table"`
	Status   TableStatus   `json:"status"`
	Queries  int           `json:"queries"`
	Columns  int           `json:"columns,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}
