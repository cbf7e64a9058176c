package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	wideSeparatorWidthConstant      = 80
	summarySeparatorWidthConstant   = 60
	heavySeparatorCharacterConstant = "="
	lightSeparatorCharacterConstant = "-"
	commitDateLayoutConstant        = "2006-01-02 15:04"
	summaryMessageLimitConstant     = 100
	historySubjectLimitConstant     = 50
	searchMessageLimitConstant      = 100
	authorColumnWidthConstant       = 20
	searchMatchesShownConstant      = 10
	ellipsisConstant                = "..."
	relativeTimePastLabelConstant   = "ago"
	relativeTimeFutureLabelConstant = "from now"

	batchSummaryTitleTemplateConstant    = "SUMMARY - %s"
	batchTotalTemplateConstant           = "Total repositories: %d"
	batchSucceededTemplateConstant       = "Successful: %d"
	batchFailedTemplateConstant          = "Errors: %d"
	batchUpdatedTemplateConstant         = "Updated: %d"
	batchNewCommitsTemplateConstant      = "Total new commits: %d"
	batchElapsedTemplateConstant         = "Elapsed: %s"
	batchFailuresHeaderConstant          = "Errors encountered:"
	batchFailureTemplateConstant         = "  - %s: %s (attempts: %d)"
	batchUpdatesHeaderConstant           = "Updated repositories:"
	batchUpdateTemplateConstant          = "  %s %s: %s, %d new commits"
	batchResultsFileTemplateConstant     = "Results saved to %s"
	batchCommandActivityTemplateConstant = "Git commands: %d run, %d failed"
	unknownErrorConstant                 = "Unknown error"

	summariesTitleConstant            = "Last Commit Summaries:"
	summaryRepositoryTemplateConstant = "%s:"
	summaryHashTemplateConstant       = "  Hash: %s"
	summaryDateTemplateConstant       = "  Date: %s (%s)"
	summaryAuthorTemplateConstant     = "  Author: %s"
	summaryMessageTemplateConstant    = "  Message: %s"
	summaryNotClonedTemplateConstant  = "%s: Not cloned"
	summaryErrorTemplateConstant      = "%s: Error - %s"

	historyTitleTemplateConstant = "Commit history for %s (%d commits):"
	historyLineTemplateConstant  = "%3d. %s | %s | %-20s | %s"
	historyEmptyTemplateConstant = "No commits in %s."

	statisticsTitleConstant             = "Repository Statistics:"
	statisticsTotalTemplateConstant     = "Total repositories in list: %d"
	statisticsClonedTemplateConstant    = "Cloned repositories: %d"
	statisticsNotClonedTemplateConstant = "Not cloned: %d"
	statisticsSizeTemplateConstant      = "Total size: %.2f MB (%s)"
	statisticsCommitsTemplateConstant   = "Total commits: %s"
	statisticsAverageTemplateConstant   = "Average commits per repo: %.1f"

	searchTitleTemplateConstant      = "Found %d repositories with matching commits:"
	searchRepositoryTemplateConstant = "%s (%d matches):"
	searchLineTemplateConstant       = "  %s | %s | %-20s | %s"
	searchMoreTemplateConstant       = "  ... and %d more matches"
	searchTotalTemplateConstant      = "Total: %d matches across %d repositories"
	searchEmptyTemplateConstant      = "No commits found containing '%s'"

	filterTitleTemplateConstant = "Found %d repositories matching '%s':"
	filterLineTemplateConstant  = "%2d. [%s] %s"
	filterEmptyTemplateConstant = "No repositories found matching pattern '%s'"
	clonedLabelConstant         = "Cloned"
	notClonedLabelConstant      = "Not cloned"

	choiceLineTemplateConstant = "%2d. [%s] %s"

	recloneSuccessTemplateConstant = "%s %s: %s (%s)"
	recloneFailureTemplateConstant = "%s %s: %s (attempts: %d)"

	exportCompletedTemplateConstant = "Export completed! Saved to %s"
)

// Reporter prints finished batch and inspection reports.
type Reporter struct {
	writer  io.Writer
	colors  palette
	heading lipgloss.Style
	clock   func() time.Time
}

// NewReporter prints to writer, enabling colors only on a terminal.
func NewReporter(writer io.Writer) *Reporter {
	return NewReporterWithOptions(writer, IsTerminal(writer), time.Now)
}

// NewReporterWithOptions prints to writer with explicit color mode and clock.
// The clock anchors relative commit dates.
func NewReporterWithOptions(writer io.Writer, colorsEnabled bool, clock func() time.Time) *Reporter {
	if clock == nil {
		clock = time.Now
	}
	renderer := lipgloss.NewRenderer(writer)
	return &Reporter{
		writer:  writer,
		colors:  newPalette(colorsEnabled),
		heading: renderer.NewStyle().Bold(true),
		clock:   clock,
	}
}

// BatchSummary prints totals, updated repositories, and failures of a batch.
func (reporter *Reporter) BatchSummary(report workspace.BatchReport, activity CommandActivity) {
	summary := report.Summary
	heavySeparator := strings.Repeat(heavySeparatorCharacterConstant, summarySeparatorWidthConstant)

	reporter.blank()
	reporter.println(heavySeparator)
	reporter.title(fmt.Sprintf(batchSummaryTitleTemplateConstant, strings.ToUpper(string(report.Kind))))
	reporter.println(heavySeparator)
	reporter.printf(batchTotalTemplateConstant, summary.Total)
	reporter.printf(batchSucceededTemplateConstant, summary.Succeeded)
	reporter.printf(batchFailedTemplateConstant, summary.Failed)
	if report.Kind == batch.OperationUpdate {
		reporter.printf(batchUpdatedTemplateConstant, summary.Updated)
		reporter.printf(batchNewCommitsTemplateConstant, summary.NewCommits)
	}
	if !report.StartedAt.IsZero() && !report.FinishedAt.IsZero() {
		reporter.printf(batchElapsedTemplateConstant, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	reporter.println(heavySeparator)

	if report.Kind == batch.OperationUpdate && summary.Updated > 0 {
		reporter.blank()
		reporter.println(batchUpdatesHeaderConstant)
		for _, result := range report.Results {
			if !result.Succeeded() || result.NewCommitCount == 0 {
				continue
			}
			reporter.printf(batchUpdateTemplateConstant, reporter.colors.icon(true), result.Reference.Identifier, result.Status, result.NewCommitCount)
		}
	}

	if len(summary.Failures) > 0 {
		reporter.blank()
		reporter.println(batchFailuresHeaderConstant)
		for _, failure := range summary.Failures {
			detail := failure.Detail
			if len(strings.TrimSpace(detail)) == 0 {
				detail = unknownErrorConstant
			}
			reporter.printf(batchFailureTemplateConstant, failure.Identifier, detail, failure.Attempts)
		}
	}

	if len(report.ResultsFile) > 0 || activity.Started > 0 {
		reporter.blank()
	}
	if len(report.ResultsFile) > 0 {
		reporter.printf(batchResultsFileTemplateConstant, report.ResultsFile)
	}
	if activity.Started > 0 {
		reporter.println(reporter.colors.muted.Sprintf(batchCommandActivityTemplateConstant, activity.Started, activity.Failed))
	}
}

// CommitSummaries prints the last commit of every repository.
func (reporter *Reporter) CommitSummaries(summaries []workspace.CommitSummary) {
	separator := strings.Repeat(lightSeparatorCharacterConstant, wideSeparatorWidthConstant)

	reporter.blank()
	reporter.title(summariesTitleConstant)
	reporter.println(separator)
	for _, summary := range summaries {
		reporter.blank()
		identifier := summary.Reference.Identifier
		switch {
		case summary.Status == workspace.SummaryStatusNotCloned:
			reporter.printf(summaryNotClonedTemplateConstant, identifier)
		case summary.Status == workspace.SummaryStatusError || summary.LastCommit == nil:
			reporter.printf(summaryErrorTemplateConstant, identifier, summary.ErrorDetail)
		default:
			commit := *summary.LastCommit
			reporter.printf(summaryRepositoryTemplateConstant, identifier)
			reporter.printf(summaryHashTemplateConstant, commit.ShortHash())
			reporter.printf(summaryDateTemplateConstant, commit.Date.Format(commitDateLayoutConstant), reporter.relativeTime(commit.Date))
			reporter.printf(summaryAuthorTemplateConstant, commit.Author)
			reporter.printf(summaryMessageTemplateConstant, truncateWithEllipsis(strings.TrimSpace(commit.Message), summaryMessageLimitConstant))
		}
	}
	reporter.println(separator)
}

// History prints a numbered commit history.
func (reporter *Reporter) History(reference repository.Reference, commits []repository.Commit) {
	if len(commits) == 0 {
		reporter.printf(historyEmptyTemplateConstant, reference.Identifier)
		return
	}
	separator := strings.Repeat(lightSeparatorCharacterConstant, wideSeparatorWidthConstant)

	reporter.blank()
	reporter.title(fmt.Sprintf(historyTitleTemplateConstant, reference.Identifier, len(commits)))
	reporter.println(separator)
	for commitIndex, commit := range commits {
		reporter.printf(
			historyLineTemplateConstant,
			commitIndex+1,
			commit.ShortHash(),
			commit.Date.Format(commitDateLayoutConstant),
			repository.Truncate(commit.Author, authorColumnWidthConstant),
			repository.Truncate(commit.Subject(), historySubjectLimitConstant),
		)
	}
	reporter.println(separator)
}

// Statistics prints repository counts, disk usage, and commit totals.
func (reporter *Reporter) Statistics(statistics workspace.Statistics) {
	separator := strings.Repeat(lightSeparatorCharacterConstant, wideSeparatorWidthConstant)

	reporter.blank()
	reporter.title(statisticsTitleConstant)
	reporter.println(separator)
	reporter.printf(statisticsTotalTemplateConstant, statistics.TotalRepositories)
	reporter.printf(statisticsClonedTemplateConstant, statistics.Cloned)
	reporter.printf(statisticsNotClonedTemplateConstant, statistics.NotCloned)
	reporter.printf(statisticsSizeTemplateConstant, statistics.TotalSizeMegabytes(), humanize.IBytes(uint64(max(statistics.TotalSizeBytes, 0))))
	reporter.printf(statisticsCommitsTemplateConstant, humanize.Comma(int64(statistics.TotalCommits)))
	if statistics.Cloned > 0 {
		reporter.printf(statisticsAverageTemplateConstant, statistics.AverageCommits())
	}
	reporter.println(separator)
}

// SearchResults prints up to ten matches per repository and a grand total.
func (reporter *Reporter) SearchResults(query string, results []workspace.SearchResult) {
	if len(results) == 0 {
		reporter.printf(searchEmptyTemplateConstant, query)
		return
	}
	heavySeparator := strings.Repeat(heavySeparatorCharacterConstant, wideSeparatorWidthConstant)
	lightSeparator := strings.Repeat(lightSeparatorCharacterConstant, wideSeparatorWidthConstant)

	totalMatches := 0
	reporter.blank()
	reporter.title(fmt.Sprintf(searchTitleTemplateConstant, len(results)))
	reporter.println(heavySeparator)
	for _, result := range results {
		totalMatches += len(result.Matches)
		reporter.blank()
		reporter.printf(searchRepositoryTemplateConstant, result.Reference.Identifier, len(result.Matches))
		reporter.println(lightSeparator)
		for matchIndex, match := range result.Matches {
			if matchIndex == searchMatchesShownConstant {
				reporter.printf(searchMoreTemplateConstant, len(result.Matches)-searchMatchesShownConstant)
				break
			}
			reporter.printf(
				searchLineTemplateConstant,
				match.ShortHash(),
				match.Date.Format(commitDateLayoutConstant),
				repository.Truncate(match.Author, authorColumnWidthConstant),
				repository.Truncate(match.Subject(), searchMessageLimitConstant),
			)
		}
	}
	reporter.println(heavySeparator)
	reporter.printf(searchTotalTemplateConstant, totalMatches, len(results))
}

// FilterResults prints repositories matching pattern with their clone state.
func (reporter *Reporter) FilterResults(pattern string, references []repository.Reference) {
	if len(references) == 0 {
		reporter.printf(filterEmptyTemplateConstant, pattern)
		return
	}
	separator := strings.Repeat(lightSeparatorCharacterConstant, summarySeparatorWidthConstant)

	reporter.blank()
	reporter.title(fmt.Sprintf(filterTitleTemplateConstant, len(references), pattern))
	reporter.println(separator)
	for referenceIndex, reference := range references {
		label := reporter.colors.icon(true) + " " + clonedLabelConstant
		if !reference.Exists {
			label = reporter.colors.icon(false) + " " + notClonedLabelConstant
		}
		reporter.printf(filterLineTemplateConstant, referenceIndex+1, label, reference.Identifier)
	}
	reporter.println(separator)
}

// RepositoryChoices prints a numbered selection list.
func (reporter *Reporter) RepositoryChoices(references []repository.Reference) {
	for referenceIndex, reference := range references {
		reporter.printf(choiceLineTemplateConstant, referenceIndex+1, reporter.colors.icon(reference.Exists), reference.Identifier)
	}
}

// RecloneResult prints the outcome of a single reclone.
func (reporter *Reporter) RecloneResult(result batch.TaskResult) {
	if result.Succeeded() {
		reporter.printf(recloneSuccessTemplateConstant, reporter.colors.icon(true), result.Reference.Identifier, result.Status, result.Elapsed.Round(time.Millisecond))
		return
	}
	detail := result.ErrorDetail
	if len(strings.TrimSpace(detail)) == 0 {
		detail = unknownErrorConstant
	}
	reporter.printf(recloneFailureTemplateConstant, reporter.colors.icon(false), result.Reference.Identifier, detail, result.Attempts)
}

// ExportCompleted prints where an export was written.
func (reporter *Reporter) ExportCompleted(report workspace.ExportReport) {
	reporter.blank()
	reporter.printf(exportCompletedTemplateConstant, report.Path)
}

func (reporter *Reporter) relativeTime(moment time.Time) string {
	return humanize.RelTime(moment, reporter.clock(), relativeTimePastLabelConstant, relativeTimeFutureLabelConstant)
}

func (reporter *Reporter) title(text string) {
	reporter.println(reporter.heading.Render(text))
}

func (reporter *Reporter) printf(format string, arguments ...any) {
	reporter.println(fmt.Sprintf(format, arguments...))
}

func (reporter *Reporter) println(text string) {
	fmt.Fprintln(reporter.writer, text)
}

func (reporter *Reporter) blank() {
	fmt.Fprintln(reporter.writer)
}

func truncateWithEllipsis(text string, limit int) string {
	truncated := repository.Truncate(text, limit)
	if truncated == text {
		return text
	}
	return truncated + ellipsisConstant
}
