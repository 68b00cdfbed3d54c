package model

import "time"

// RunKind distinguishes the two collection paths.
type RunKind string

const (
	RunKindLogs      RunKind = "logs"
	RunKindAggregate RunKind = "aggregate"
)

// RunStatus represents the state of a collection run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// FetchRun records one invocation of a log or aggregate fetch against the
// Quay API, kept in the local history database.
type FetchRun struct {
	ID         string    `json:"id"`
	Repository string    `json:"repository"`
	Kind       RunKind   `json:"kind"`
	StartTime  string    `json:"start_time,omitempty"`
	EndTime    string    `json:"end_time,omitempty"`
	Entries    int       `json:"entries"`
	OutputFile string    `json:"output_file,omitempty"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
