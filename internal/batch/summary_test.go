package batch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcloner/internal/batch"
)

func TestSummarizeCountsUpdatesAndFailures(testInstance *testing.T) {
	results := []batch.TaskResult{
		{Reference: testReference("octo/a"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, Status: batch.StatusUpdated, NewCommitCount: 3},
		{Reference: testReference("octo/b"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeFailure, Status: batch.StatusError, ErrorDetail: "network", Attempts: 3},
		{Reference: testReference("octo/c"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, Status: batch.StatusUpdatedForced, NewCommitCount: 1},
		{Reference: testReference("octo/d"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, Status: batch.StatusNoChanges},
		{Reference: testReference("octo/e"), Kind: batch.OperationClone, Outcome: batch.OutcomeSuccess, Status: batch.StatusCloned, NewCommitCount: 9},
		{Reference: testReference("octo/f"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeFailure, Status: batch.StatusNotCloned, ErrorDetail: "repository not cloned", Attempts: 1},
	}

	summary := batch.Summarize(results)

	require.Equal(testInstance, 6, summary.Total)
	require.Equal(testInstance, 4, summary.Succeeded)
	require.Equal(testInstance, 2, summary.Failed)
	require.Equal(testInstance, 2, summary.Updated)
	require.Equal(testInstance, 4, summary.NewCommits)
	require.Equal(testInstance, 1, summary.StatusCounts[batch.StatusNotCloned])
	require.Equal(testInstance, []batch.FailureDetail{
		{Identifier: "octo/b", Kind: batch.OperationUpdate, Detail: "network", Attempts: 3},
		{Identifier: "octo/f", Kind: batch.OperationUpdate, Detail: "repository not cloned", Attempts: 1},
	}, summary.Failures)
}

func TestSummarizeIsOrderIndependentForCounts(testInstance *testing.T) {
	results := []batch.TaskResult{
		{Reference: testReference("octo/a"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, NewCommitCount: 2},
		{Reference: testReference("octo/b"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeFailure},
		{Reference: testReference("octo/c"), Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess},
	}
	reversed := []batch.TaskResult{results[2], results[1], results[0]}

	forward := batch.Summarize(results)
	backward := batch.Summarize(reversed)

	require.Equal(testInstance, forward.Total, backward.Total)
	require.Equal(testInstance, forward.Succeeded, backward.Succeeded)
	require.Equal(testInstance, forward.Failed, backward.Failed)
	require.Equal(testInstance, forward.Updated, backward.Updated)
	require.Equal(testInstance, forward.NewCommits, backward.NewCommits)
}
