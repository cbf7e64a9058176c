package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
)

var errTransientStub = errors.New("transient network failure")

// scriptedClient fails each repository a configured number of times before succeeding.
type scriptedClient struct {
	mutex                 sync.Mutex
	failuresBeforeSuccess map[string]int
	permanentFailures     map[string]error
	panicking             map[string]bool
	newCommitCounts       map[string]int
	operationDelay        time.Duration
	onAttempt             func(identifier string, attempt int)
	calls                 map[string]int

	activeOperations  atomic.Int32
	maximumConcurrent atomic.Int32
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		failuresBeforeSuccess: map[string]int{},
		permanentFailures:     map[string]error{},
		panicking:             map[string]bool{},
		newCommitCounts:       map[string]int{},
		calls:                 map[string]int{},
	}
}

func (client *scriptedClient) Clone(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	return client.perform(executionContext, reference, batch.StatusCloned)
}

func (client *scriptedClient) Update(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	report, operationError := client.perform(executionContext, reference, batch.StatusNoChanges)
	if operationError != nil {
		return report, operationError
	}
	client.mutex.Lock()
	commitCount := client.newCommitCounts[reference.Identifier]
	client.mutex.Unlock()
	if commitCount > 0 {
		report.Status = batch.StatusUpdated
		for commitIndex := 0; commitIndex < commitCount; commitIndex++ {
			report.NewCommits = append(report.NewCommits, repository.Commit{Hash: fmt.Sprintf("%040d", commitIndex)})
		}
	}
	return report, nil
}

func (client *scriptedClient) Reclone(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	return client.perform(executionContext, reference, batch.StatusRecloned)
}

func (client *scriptedClient) perform(executionContext context.Context, reference repository.Reference, status batch.Status) (batch.OperationReport, error) {
	active := client.activeOperations.Add(1)
	defer client.activeOperations.Add(-1)
	for {
		observed := client.maximumConcurrent.Load()
		if active <= observed || client.maximumConcurrent.CompareAndSwap(observed, active) {
			break
		}
	}

	client.mutex.Lock()
	client.calls[reference.Identifier]++
	attempt := client.calls[reference.Identifier]
	remainingFailures := client.failuresBeforeSuccess[reference.Identifier]
	permanentFailure := client.permanentFailures[reference.Identifier]
	shouldPanic := client.panicking[reference.Identifier]
	onAttempt := client.onAttempt
	client.mutex.Unlock()

	if onAttempt != nil {
		onAttempt(reference.Identifier, attempt)
	}

	if client.operationDelay > 0 {
		select {
		case <-time.After(client.operationDelay):
		case <-executionContext.Done():
			return batch.OperationReport{}, executionContext.Err()
		}
	}

	if shouldPanic {
		panic("client exploded")
	}
	if permanentFailure != nil {
		return batch.OperationReport{}, batch.Permanent(permanentFailure)
	}
	if remainingFailures < 0 || attempt <= remainingFailures {
		return batch.OperationReport{}, fmt.Errorf("attempt %d: %w", attempt, errTransientStub)
	}
	return batch.OperationReport{Status: status}, nil
}

func (client *scriptedClient) callCount(identifier string) int {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return client.calls[identifier]
}

func testReference(identifier string) repository.Reference {
	return repository.Reference{Identifier: identifier, LocalPath: repository.LocalDirectoryName(identifier)}
}
