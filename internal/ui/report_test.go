package ui_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/ui"
	"github.com/temirov/reposcloner/internal/workspace"
)

var testReportNow = time.Date(2024, time.March, 8, 12, 0, 0, 0, time.UTC)

func newTestReporter() (*ui.Reporter, *bytes.Buffer) {
	outputBuffer := &bytes.Buffer{}
	return ui.NewReporterWithOptions(outputBuffer, false, func() time.Time { return testReportNow }), outputBuffer
}

func TestReporterBatchSummary(testInstance *testing.T) {
	results := []batch.TaskResult{
		{Reference: repository.Reference{Identifier: "octo/a"}, Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, Status: batch.StatusUpdated, NewCommitCount: 3},
		{Reference: repository.Reference{Identifier: "octo/b"}, Kind: batch.OperationUpdate, Outcome: batch.OutcomeFailure, Status: batch.StatusError, ErrorDetail: "network unreachable", Attempts: 3},
		{Reference: repository.Reference{Identifier: "octo/c"}, Kind: batch.OperationUpdate, Outcome: batch.OutcomeSuccess, Status: batch.StatusNoChanges},
	}

	testCases := []struct {
		name             string
		kind             batch.OperationKind
		activity         ui.CommandActivity
		expectedLines    []string
		unexpectedTokens []string
	}{
		{
			name:     "update_lists_commits_and_failures",
			kind:     batch.OperationUpdate,
			activity: ui.CommandActivity{Started: 9, Failed: 3},
			expectedLines: []string{
				strings.Repeat("=", 60),
				"SUMMARY - UPDATE",
				"Total repositories: 3",
				"Successful: 2",
				"Errors: 1",
				"Updated: 1",
				"Total new commits: 3",
				"  ✓ octo/a: updated, 3 new commits",
				"Errors encountered:",
				"  - octo/b: network unreachable (attempts: 3)",
				"Results saved to changes_results.json",
				"Git commands: 9 run, 3 failed",
			},
		},
		{
			name: "clone_omits_update_totals",
			kind: batch.OperationClone,
			expectedLines: []string{
				"SUMMARY - CLONE",
				"Total repositories: 3",
			},
			unexpectedTokens: []string{"Updated:", "Total new commits", "Git commands"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testProgressSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			reporter, outputBuffer := newTestReporter()
			kindResults := lo.Map(results, func(result batch.TaskResult, _ int) batch.TaskResult {
				result.Kind = testCase.kind
				return result
			})
			reporter.BatchSummary(workspace.BatchReport{
				Kind:        testCase.kind,
				Results:     kindResults,
				Summary:     batch.Summarize(kindResults),
				ResultsFile: "changes_results.json",
			}, testCase.activity)

			outputLines := strings.Split(outputBuffer.String(), "\n")
			for _, expectedLine := range testCase.expectedLines {
				require.Contains(testInstance, outputLines, expectedLine)
			}
			for _, unexpectedToken := range testCase.unexpectedTokens {
				require.NotContains(testInstance, outputBuffer.String(), unexpectedToken)
			}
		})
	}
}

func TestReporterCommitSummaries(testInstance *testing.T) {
	reporter, outputBuffer := newTestReporter()
	longMessage := strings.Repeat("x", 120)

	reporter.CommitSummaries([]workspace.CommitSummary{
		{
			Reference: repository.Reference{Identifier: "octo/a"},
			LastCommit: &repository.Commit{
				Hash:    "0123456789abcdef0123456789abcdef01234567",
				Author:  "Ada Lovelace",
				Date:    testReportNow.Add(-72 * time.Hour),
				Message: longMessage,
			},
		},
		{Reference: repository.Reference{Identifier: "octo/b"}, Status: workspace.SummaryStatusNotCloned},
		{Reference: repository.Reference{Identifier: "octo/c"}, Status: workspace.SummaryStatusError, ErrorDetail: "bad object"},
	})

	outputLines := strings.Split(outputBuffer.String(), "\n")
	require.Contains(testInstance, outputLines, "Last Commit Summaries:")
	require.Contains(testInstance, outputLines, "  Hash: 0123456")
	require.Contains(testInstance, outputLines, "  Date: 2024-03-05 12:00 (3 days ago)")
	require.Contains(testInstance, outputLines, "  Author: Ada Lovelace")
	require.Contains(testInstance, outputLines, "  Message: "+strings.Repeat("x", 100)+"...")
	require.Contains(testInstance, outputLines, "octo/b: Not cloned")
	require.Contains(testInstance, outputLines, "octo/c: Error - bad object")
}

func TestReporterHistory(testInstance *testing.T) {
	reporter, outputBuffer := newTestReporter()
	reference := repository.Reference{Identifier: "octo/a"}

	reporter.History(reference, []repository.Commit{
		{Hash: "abcdef0123456789", Author: "Grace Hopper", Date: testReportNow, Message: "Fix compiler\n\nLonger body"},
	})
	require.Contains(testInstance, strings.Split(outputBuffer.String(), "\n"), "  1. abcdef0 | 2024-03-08 12:00 | Grace Hopper         | Fix compiler")
	require.Contains(testInstance, outputBuffer.String(), "Commit history for octo/a (1 commits):")

	emptyReporter, emptyOutput := newTestReporter()
	emptyReporter.History(reference, nil)
	require.Equal(testInstance, "No commits in octo/a.\n", emptyOutput.String())
}

func TestReporterStatistics(testInstance *testing.T) {
	testCases := []struct {
		name             string
		statistics       workspace.Statistics
		expectedLines    []string
		unexpectedTokens []string
	}{
		{
			name: "cloned_repositories",
			statistics: workspace.Statistics{
				TotalRepositories: 3,
				Cloned:            2,
				NotCloned:         1,
				TotalSizeBytes:    3 * 1024 * 1024,
				TotalCommits:      1500,
			},
			expectedLines: []string{
				"Total repositories in list: 3",
				"Cloned repositories: 2",
				"Not cloned: 1",
				"Total size: 3.00 MB (3.0 MiB)",
				"Total commits: 1,500",
				"Average commits per repo: 750.0",
			},
		},
		{
			name:             "nothing_cloned",
			statistics:       workspace.Statistics{TotalRepositories: 2, NotCloned: 2},
			expectedLines:    []string{"Cloned repositories: 0", "Total size: 0.00 MB (0 B)"},
			unexpectedTokens: []string{"Average commits"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testProgressSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			reporter, outputBuffer := newTestReporter()
			reporter.Statistics(testCase.statistics)

			outputLines := strings.Split(outputBuffer.String(), "\n")
			for _, expectedLine := range testCase.expectedLines {
				require.Contains(testInstance, outputLines, expectedLine)
			}
			for _, unexpectedToken := range testCase.unexpectedTokens {
				require.NotContains(testInstance, outputBuffer.String(), unexpectedToken)
			}
		})
	}
}

func TestReporterSearchResultsCapsMatchesPerRepository(testInstance *testing.T) {
	reporter, outputBuffer := newTestReporter()
	matches := lo.Times(12, func(index int) repository.Commit {
		return repository.Commit{Hash: fmt.Sprintf("%040d", index), Author: "Ada", Date: testReportNow, Message: fmt.Sprintf("fix bug %d", index)}
	})

	reporter.SearchResults("fix", []workspace.SearchResult{
		{Reference: repository.Reference{Identifier: "octo/a"}, Matches: matches},
		{Reference: repository.Reference{Identifier: "octo/b"}, Matches: matches[:1]},
	})

	output := outputBuffer.String()
	require.Contains(testInstance, output, "Found 2 repositories with matching commits:")
	require.Contains(testInstance, output, "octo/a (12 matches):")
	require.Contains(testInstance, output, "  ... and 2 more matches")
	require.Contains(testInstance, output, "fix bug 9")
	require.NotContains(testInstance, output, "fix bug 10")
	require.Contains(testInstance, output, "Total: 13 matches across 2 repositories")

	emptyReporter, emptyOutput := newTestReporter()
	emptyReporter.SearchResults("nothing", nil)
	require.Equal(testInstance, "No commits found containing 'nothing'\n", emptyOutput.String())
}

func TestReporterFilterResults(testInstance *testing.T) {
	reporter, outputBuffer := newTestReporter()
	reporter.FilterResults("alpha", []repository.Reference{
		{Identifier: "octo/alpha", Exists: true},
		{Identifier: "octo/alpha-two", Exists: false},
	})

	outputLines := strings.Split(outputBuffer.String(), "\n")
	require.Contains(testInstance, outputLines, "Found 2 repositories matching 'alpha':")
	require.Contains(testInstance, outputLines, " 1. [✓ Cloned] octo/alpha")
	require.Contains(testInstance, outputLines, " 2. [✗ Not cloned] octo/alpha-two")

	emptyReporter, emptyOutput := newTestReporter()
	emptyReporter.FilterResults("zzz", nil)
	require.Equal(testInstance, "No repositories found matching pattern 'zzz'\n", emptyOutput.String())
}

func TestReporterRecloneResult(testInstance *testing.T) {
	reporter, outputBuffer := newTestReporter()
	reporter.RecloneResult(batch.TaskResult{
		Reference: repository.Reference{Identifier: "octo/a"},
		Outcome:   batch.OutcomeFailure,
		Status:    batch.StatusError,
		Attempts:  3,
	})
	require.Equal(testInstance, "✗ octo/a: Unknown error (attempts: 3)\n", outputBuffer.String())
}
