package batch

import (
	"github.com/samber/lo"
)

// FailureDetail describes one failed task.
type FailureDetail struct {
	Identifier string
	Kind       OperationKind
	Detail     string
	Attempts   int
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total        int
	Succeeded    int
	Failed       int
	Updated      int
	NewCommits   int
	StatusCounts map[Status]int
	Failures     []FailureDetail
}

// Summarize reduces results into totals. Counts do not depend on result order;
// failures are listed in the order they appear in results. Only successful update
// results that brought in at least one commit count as updated.
func Summarize(results []TaskResult) Summary {
	successfulUpdates := lo.Filter(results, func(result TaskResult, _ int) bool {
		return result.Kind == OperationUpdate && result.Succeeded() && result.NewCommitCount > 0
	})
	failures := lo.FilterMap(results, func(result TaskResult, _ int) (FailureDetail, bool) {
		return FailureDetail{
			Identifier: result.Reference.Identifier,
			Kind:       result.Kind,
			Detail:     result.ErrorDetail,
			Attempts:   result.Attempts,
		}, !result.Succeeded()
	})

	return Summary{
		Total:     len(results),
		Succeeded: len(results) - len(failures),
		Failed:    len(failures),
		Updated:   len(successfulUpdates),
		NewCommits: lo.SumBy(successfulUpdates, func(result TaskResult) int {
			return result.NewCommitCount
		}),
		StatusCounts: lo.CountValuesBy(results, func(result TaskResult) Status {
			return result.Status
		}),
		Failures: failures,
	}
}
