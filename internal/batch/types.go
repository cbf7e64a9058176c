package batch

import (
	"context"
	"time"

	"github.com/temirov/reposcloner/internal/repository"
)

// OperationKind names the repository operation a task performs.
type OperationKind string

// Supported operation kinds.
const (
	OperationClone   OperationKind = "clone"
	OperationUpdate  OperationKind = "update"
	OperationReclone OperationKind = "reclone"
)

// Outcome is the terminal result of a task.
type Outcome string

// Task outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Status labels the concrete effect an operation had on a working copy.
type Status string

// Status labels reported by version control clients and tasks.
const (
	StatusCloned        Status = "cloned"
	StatusAlreadyCloned Status = "already_cloned"
	StatusUpdated       Status = "updated"
	StatusUpdatedForced Status = "updated_forced"
	StatusNoChanges     Status = "no_changes"
	StatusRecloned      Status = "recloned"
	StatusNotCloned     Status = "not_cloned"
	StatusError         Status = "error"
)

// OperationReport describes what a successful operation did.
type OperationReport struct {
	Status      Status
	OldRevision string
	NewRevision string
	NewCommits  []repository.Commit
}

// VersionControlClient performs repository operations against working copies.
type VersionControlClient interface {
	Clone(executionContext context.Context, reference repository.Reference) (OperationReport, error)
	Update(executionContext context.Context, reference repository.Reference) (OperationReport, error)
	Reclone(executionContext context.Context, reference repository.Reference) (OperationReport, error)
}

// TaskResult is the immutable record a task produces exactly once.
type TaskResult struct {
	Reference      repository.Reference
	Kind           OperationKind
	Outcome        Outcome
	Status         Status
	ErrorDetail    string
	Err            error
	NewCommitCount int
	OldRevision    string
	NewRevision    string
	NewCommits     []repository.Commit
	Attempts       int
	Elapsed        time.Duration
}

// Succeeded reports whether the task finished with a success outcome.
func (result TaskResult) Succeeded() bool {
	return result.Outcome == OutcomeSuccess
}
