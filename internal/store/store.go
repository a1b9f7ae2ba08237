package store

import (
	"context"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// RunFilter specifies criteria for listing validation runs.
type RunFilter struct {
	SubmissionID string          `json:"submission_id,omitempty"`
	Status       model.RunStatus `json:"status,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the validation engine.
// Runs, overrides, and resolutions are append-only: rows are inserted,
// never updated or deleted, so the audit trail stays intact.
type Store interface {
	// Validation runs
	SaveRun(ctx context.Context, run *model.ValidationRun) error
	SaveRuns(ctx context.Context, runs []model.ValidationRun) error
	GetRun(ctx context.Context, runID string) (*model.ValidationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ValidationRun, error)

	// Changesets. GetChangeSet returns the most recently computed set for
	// the pair, or nil when none exists.
	SaveChangeSet(ctx context.Context, cs *model.ChangeSet) error
	GetChangeSet(ctx context.Context, parentID, childID string) (*model.ChangeSet, error)

	// Officer overrides (append-only, newest first on read)
	SaveOverride(ctx context.Context, o *model.OfficerOverride) error
	ListOverrides(ctx context.Context, runID string) ([]model.OfficerOverride, error)

	// Field resolutions (append-only, newest first on read)
	SaveResolution(ctx context.Context, r *model.FieldResolution) error
	ListResolutions(ctx context.Context, submissionID string) ([]model.FieldResolution, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
