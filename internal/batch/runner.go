package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	nilTaskErrorTemplateConstant     = "%w at position %d"
	duplicateTaskTemplateConstant    = "%w: %s at positions %d and %d"
	workerLimitErrorTemplateConstant = "%w: %d"
	batchStartedMessageConstant      = "batch started"
	batchCompletedMessageConstant    = "batch completed"
	logFieldTaskCountConstant        = "task_count"
	logFieldParallelConstant         = "parallel"
	logFieldWorkerLimitConstant      = "max_workers"
	logFieldSucceededCountConstant   = "succeeded"
	logFieldFailedCountConstant      = "failed"
	logFieldElapsedConstant          = "elapsed"
	defaultMaxWorkersConstant        = 4
	sequentialWorkerLimitConstant    = 1
)

var (
	// ErrNilTask indicates a batch containing a nil task.
	ErrNilTask = errors.New("batch contains a nil task")
	// ErrDuplicateTask indicates the same task scheduled more than once in a batch.
	ErrDuplicateTask = errors.New("batch schedules a task more than once")
	// ErrInvalidWorkerLimit indicates a parallel batch with fewer than one worker.
	ErrInvalidWorkerLimit = errors.New("worker limit must be at least 1")
)

// RunOptions selects the scheduling mode for a batch.
type RunOptions struct {
	Parallel   bool
	MaxWorkers int
}

// DefaultRunOptions returns parallel execution with four workers.
func DefaultRunOptions() RunOptions {
	return RunOptions{Parallel: true, MaxWorkers: defaultMaxWorkersConstant}
}

// ProgressEvent is emitted after each task completes.
type ProgressEvent struct {
	Completed int
	Total     int
	Result    TaskResult
}

// ProgressObserver receives progress events. Events for one batch are delivered
// from a single goroutine, so implementations need no locking of their own.
type ProgressObserver interface {
	TaskCompleted(event ProgressEvent)
}

// ProgressObserverFunc adapts a function to ProgressObserver.
type ProgressObserverFunc func(event ProgressEvent)

// TaskCompleted calls the wrapped function.
func (observerFunction ProgressObserverFunc) TaskCompleted(event ProgressEvent) {
	observerFunction(event)
}

type noopProgressObserver struct{}

func (noopProgressObserver) TaskCompleted(ProgressEvent) {}

// Runner executes batches of tasks.
type Runner struct {
	observer ProgressObserver
	logger   *zap.Logger
}

// NewRunner constructs a Runner. Nil arguments fall back to no-op implementations.
func NewRunner(observer ProgressObserver, logger *zap.Logger) *Runner {
	if observer == nil {
		observer = noopProgressObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{observer: observer, logger: logger}
}

// Run executes every task and returns exactly one result per task.
//
// Sequential runs preserve input order. Parallel runs execute at most
// options.MaxWorkers tasks at once and return results in completion order.
// Task failures never abort the batch; only invalid input is reported as an
// error, before any task starts. When the context ends, tasks that have not
// started yet still contribute a failure result carrying the context error.
func (runner *Runner) Run(executionContext context.Context, tasks []*Task, options RunOptions) ([]TaskResult, error) {
	scheduledPositions := make(map[*Task]int, len(tasks))
	for taskIndex, task := range tasks {
		if task == nil {
			return nil, fmt.Errorf(nilTaskErrorTemplateConstant, ErrNilTask, taskIndex)
		}
		if firstIndex, scheduled := scheduledPositions[task]; scheduled {
			return nil, fmt.Errorf(duplicateTaskTemplateConstant, ErrDuplicateTask, task.reference.Identifier, firstIndex, taskIndex)
		}
		scheduledPositions[task] = taskIndex
	}
	if options.Parallel && options.MaxWorkers < 1 {
		return nil, fmt.Errorf(workerLimitErrorTemplateConstant, ErrInvalidWorkerLimit, options.MaxWorkers)
	}

	workerLimit := sequentialWorkerLimitConstant
	if options.Parallel {
		workerLimit = options.MaxWorkers
	}

	startTime := time.Now()
	runner.logger.Info(batchStartedMessageConstant,
		zap.Int(logFieldTaskCountConstant, len(tasks)),
		zap.Bool(logFieldParallelConstant, options.Parallel),
		zap.Int(logFieldWorkerLimitConstant, workerLimit),
	)

	var results []TaskResult
	if options.Parallel {
		results = runner.runParallel(executionContext, tasks, workerLimit)
	} else {
		results = runner.runSequential(executionContext, tasks)
	}

	summary := Summarize(results)
	runner.logger.Info(batchCompletedMessageConstant,
		zap.Int(logFieldTaskCountConstant, summary.Total),
		zap.Int(logFieldSucceededCountConstant, summary.Succeeded),
		zap.Int(logFieldFailedCountConstant, summary.Failed),
		zap.Duration(logFieldElapsedConstant, time.Since(startTime)),
	)

	return results, nil
}

func (runner *Runner) runSequential(executionContext context.Context, tasks []*Task) []TaskResult {
	results := make([]TaskResult, 0, len(tasks))
	for _, task := range tasks {
		result := task.Execute(executionContext)
		results = append(results, result)
		runner.observer.TaskCompleted(ProgressEvent{Completed: len(results), Total: len(tasks), Result: result})
	}
	return results
}

func (runner *Runner) runParallel(executionContext context.Context, tasks []*Task, workerLimit int) []TaskResult {
	resultChannel := make(chan TaskResult, len(tasks))
	collectedResults := make(chan []TaskResult, 1)

	go func() {
		results := make([]TaskResult, 0, len(tasks))
		for result := range resultChannel {
			results = append(results, result)
			runner.observer.TaskCompleted(ProgressEvent{Completed: len(results), Total: len(tasks), Result: result})
		}
		collectedResults <- results
	}()

	workerGroup := errgroup.Group{}
	workerGroup.SetLimit(workerLimit)
	for _, task := range tasks {
		workerGroup.Go(func() error {
			resultChannel <- task.Execute(executionContext)
			return nil
		})
	}
	_ = workerGroup.Wait()
	close(resultChannel)

	return <-collectedResults
}
