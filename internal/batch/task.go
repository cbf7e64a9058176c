package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	defaultMaxAttemptsConstant           = 3
	defaultRetryDelayConstant            = 2 * time.Second
	unsupportedOperationTemplateConstant = "unsupported operation %q"
	operationPanicTemplateConstant       = "operation panicked: %v"
	retryAbortedTemplateConstant         = "%w while waiting to retry after: %v"
	missingLocalPathTemplateConstant     = "%w for %s"
	attemptFailedMessageConstant         = "repository operation attempt failed"
	taskSucceededMessageConstant         = "repository operation succeeded"
	taskFailedMessageConstant            = "repository operation failed"
	logFieldRepositoryConstant           = "repository"
	logFieldOperationConstant            = "operation"
	logFieldAttemptConstant              = "attempt"
	logFieldMaxAttemptsConstant          = "max_attempts"
	logFieldStatusConstant               = "status"
	logFieldPermanentConstant            = "permanent"
)

var (
	// ErrClientNotConfigured indicates a task constructed without a version control client.
	ErrClientNotConfigured = errors.New("version control client not configured")
	// ErrNotCloned is returned by clients asked to update a repository that has no working copy.
	ErrNotCloned = errors.New("repository not cloned")
	// ErrWorkingCopyUnresolved indicates a reference without a working copy location.
	ErrWorkingCopyUnresolved = errors.New("working copy location not resolved")
)

// TaskState tracks a task through its bounded retry cycle.
type TaskState int

// Task states. Succeeded and Failed are terminal.
const (
	TaskPending TaskState = iota
	TaskRunning
	TaskRetrying
	TaskSucceeded
	TaskFailed
)

var taskStateNames = map[TaskState]string{
	TaskPending:   "pending",
	TaskRunning:   "running",
	TaskRetrying:  "retrying",
	TaskSucceeded: "succeeded",
	TaskFailed:    "failed",
}

func (state TaskState) String() string {
	if name, known := taskStateNames[state]; known {
		return name
	}
	return fmt.Sprintf("TaskState(%d)", int(state))
}

// Terminal reports whether the state can no longer change.
func (state TaskState) Terminal() bool {
	return state == TaskSucceeded || state == TaskFailed
}

// RetryPolicy bounds the attempts a task makes.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns three attempts two seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: defaultMaxAttemptsConstant, Delay: defaultRetryDelayConstant}
}

func (policy RetryPolicy) normalized() RetryPolicy {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return policy
}

type permanentError struct {
	cause error
}

func (failure permanentError) Error() string {
	return failure.cause.Error()
}

func (failure permanentError) Unwrap() error {
	return failure.cause
}

// Permanent marks err as not worth retrying. Tasks stop at the first permanent error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{cause: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var failure permanentError
	return errors.As(err, &failure)
}

// Task binds one repository to one operation with bounded retry.
type Task struct {
	reference repository.Reference
	kind      OperationKind
	client    VersionControlClient
	policy    RetryPolicy
	logger    *zap.Logger

	attempts int
	state    TaskState
	result   TaskResult
}

// NewTask constructs a pending task. A nil logger falls back to a no-op logger.
func NewTask(reference repository.Reference, kind OperationKind, client VersionControlClient, policy RetryPolicy, logger *zap.Logger) *Task {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Task{
		reference: reference,
		kind:      kind,
		client:    client,
		policy:    policy.normalized(),
		logger:    logger,
		state:     TaskPending,
	}
}

// Reference returns the repository the task operates on.
func (task *Task) Reference() repository.Reference {
	return task.reference
}

// Kind returns the operation the task performs.
func (task *Task) Kind() OperationKind {
	return task.kind
}

// Attempts returns the number of attempts made so far.
func (task *Task) Attempts() int {
	return task.attempts
}

// State returns the current state.
func (task *Task) State() TaskState {
	return task.state
}

// Execute runs the operation until it succeeds, fails permanently, exhausts its
// attempts, or the context ends. It always returns a result; faults raised by the
// client are recovered and reported as failures. Calling Execute on a finished
// task returns the recorded result without running the operation again.
func (task *Task) Execute(executionContext context.Context) TaskResult {
	if task.state.Terminal() {
		return task.result
	}

	startTime := time.Now()
	result := TaskResult{Reference: task.reference, Kind: task.kind}

	var lastError error
	for {
		if contextError := executionContext.Err(); contextError != nil {
			lastError = joinContextError(contextError, lastError)
			break
		}

		task.attempts++
		task.state = TaskRunning

		report, attemptError := task.attempt(executionContext)
		if attemptError == nil {
			task.state = TaskSucceeded
			result.Outcome = OutcomeSuccess
			result.Status = report.Status
			result.OldRevision = report.OldRevision
			result.NewRevision = report.NewRevision
			result.NewCommits = report.NewCommits
			result.NewCommitCount = len(report.NewCommits)
			task.logger.Info(taskSucceededMessageConstant,
				zap.String(logFieldRepositoryConstant, task.reference.Identifier),
				zap.String(logFieldOperationConstant, string(task.kind)),
				zap.String(logFieldStatusConstant, string(report.Status)),
				zap.Int(logFieldAttemptConstant, task.attempts),
			)
			return task.finish(result, startTime)
		}

		lastError = attemptError
		permanent := IsPermanent(attemptError)
		task.logger.Warn(attemptFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, task.reference.Identifier),
			zap.String(logFieldOperationConstant, string(task.kind)),
			zap.Int(logFieldAttemptConstant, task.attempts),
			zap.Int(logFieldMaxAttemptsConstant, task.policy.MaxAttempts),
			zap.Bool(logFieldPermanentConstant, permanent),
			zap.Error(attemptError),
		)

		if permanent || task.attempts >= task.policy.MaxAttempts {
			break
		}

		task.state = TaskRetrying
		if waitError := waitForRetry(executionContext, task.policy.Delay); waitError != nil {
			lastError = joinContextError(waitError, lastError)
			break
		}
	}

	task.state = TaskFailed
	result.Outcome = OutcomeFailure
	result.Status = StatusError
	if permanentStatus, isNotCloned := notClonedStatus(lastError); isNotCloned {
		result.Status = permanentStatus
	}
	result.Err = lastError
	result.ErrorDetail = lastError.Error()
	task.logger.Error(taskFailedMessageConstant,
		zap.String(logFieldRepositoryConstant, task.reference.Identifier),
		zap.String(logFieldOperationConstant, string(task.kind)),
		zap.Int(logFieldAttemptConstant, task.attempts),
		zap.Error(lastError),
	)
	return task.finish(result, startTime)
}

func (task *Task) finish(result TaskResult, startTime time.Time) TaskResult {
	result.Attempts = task.attempts
	result.Elapsed = time.Since(startTime)
	task.result = result
	return result
}

func (task *Task) attempt(executionContext context.Context) (report OperationReport, attemptError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			report = OperationReport{}
			attemptError = fmt.Errorf(operationPanicTemplateConstant, recovered)
		}
	}()

	if task.client == nil {
		return OperationReport{}, Permanent(ErrClientNotConfigured)
	}
	if validationError := repository.ValidateIdentifier(task.reference.Identifier); validationError != nil {
		return OperationReport{}, Permanent(validationError)
	}
	if len(task.reference.LocalPath) == 0 {
		return OperationReport{}, Permanent(fmt.Errorf(missingLocalPathTemplateConstant, ErrWorkingCopyUnresolved, task.reference.Identifier))
	}

	switch task.kind {
	case OperationClone:
		return task.client.Clone(executionContext, task.reference)
	case OperationUpdate:
		return task.client.Update(executionContext, task.reference)
	case OperationReclone:
		return task.client.Reclone(executionContext, task.reference)
	default:
		return OperationReport{}, Permanent(fmt.Errorf(unsupportedOperationTemplateConstant, task.kind))
	}
}

func waitForRetry(executionContext context.Context, delay time.Duration) error {
	if delay <= 0 {
		return executionContext.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}

func joinContextError(contextError error, lastError error) error {
	if lastError == nil {
		return contextError
	}
	return fmt.Errorf(retryAbortedTemplateConstant, contextError, lastError)
}

func notClonedStatus(err error) (Status, bool) {
	if errors.Is(err, ErrNotCloned) {
		return StatusNotCloned, true
	}
	return "", false
}
