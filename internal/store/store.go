// Package store persists the local history of fetch runs.
package store

import (
	"context"

	"github.com/fedora-infra/quaystats/internal/model"
)

// RunFilter specifies criteria for listing fetch runs.
type RunFilter struct {
	Repository string
	Kind       model.RunKind
	Status     model.RunStatus
	Limit      int
}

// Store defines the persistence interface for fetch-run history.
type Store interface {
	// CreateRun records the start of a fetch against the API.
	CreateRun(ctx context.Context, repo string, kind model.RunKind, startTime, endTime string) (*model.FetchRun, error)
	// CompleteRun marks a run finished with its entry count and output file.
	CompleteRun(ctx context.Context, runID string, entries int, outputFile string) error
	// FailRun marks a run failed with the error message.
	FailRun(ctx context.Context, runID string, errMsg string) error
	// ListRuns returns runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.FetchRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
