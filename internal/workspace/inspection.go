package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/gitclient"
	"github.com/temirov/reposcloner/internal/repository"
)

// SummaryStatus classifies a last-commit lookup.
type SummaryStatus string

// Summary statuses.
const (
	SummaryStatusAvailable SummaryStatus = ""
	SummaryStatusNotCloned SummaryStatus = "not_cloned"
	SummaryStatusError     SummaryStatus = "error"
)

const (
	searchScanLimitConstant           = 100
	summaryStepFetchingConstant       = "fetching..."
	exportStepConstant                = "exporting..."
	searchStepConstant                = "searching..."
	statisticsStepConstant            = "measuring..."
	exportWriteErrorTemplateConstant  = "unable to write export file %s: %w"
	notClonedErrorTemplateConstant    = "%w: %s"
	statisticsFailedMessageConstant   = "unable to measure repository"
	searchFailedMessageConstant       = "unable to search repository"
	exportWrittenMessageConstant      = "commit summaries exported"
	logFieldRepositoryConstant        = "repository"
	logFieldSummaryCountConstant      = "repositories"
	bytesPerMegabyteConstant          = 1024 * 1024
	emptySearchQueryMessageConstant   = "search query must not be empty"
	emptyFilterPatternMessageConstant = "filter pattern must not be empty"
)

var (
	// ErrEmptySearchQuery indicates a search without query text.
	ErrEmptySearchQuery = errors.New(emptySearchQueryMessageConstant)
	// ErrEmptyFilterPattern indicates a filter without a pattern.
	ErrEmptyFilterPattern = errors.New(emptyFilterPatternMessageConstant)
)

// CommitSummary holds the last commit of one repository, or why it is unavailable.
type CommitSummary struct {
	Reference   repository.Reference
	Status      SummaryStatus
	LastCommit  *repository.Commit
	ErrorDetail string
}

// ExportReport describes a written export file.
type ExportReport struct {
	Path      string
	Summaries []CommitSummary
}

// RepositoryStatistics describes one cloned repository.
type RepositoryStatistics struct {
	Reference   repository.Reference
	SizeBytes   int64
	CommitCount int
}

// Statistics aggregates repository sizes and commit counts.
type Statistics struct {
	TotalRepositories int
	Cloned            int
	NotCloned         int
	TotalSizeBytes    int64
	TotalCommits      int
	Repositories      []RepositoryStatistics
}

// TotalSizeMegabytes reports TotalSizeBytes in mebibytes.
func (statistics Statistics) TotalSizeMegabytes() float64 {
	return float64(statistics.TotalSizeBytes) / bytesPerMegabyteConstant
}

// AverageCommits reports commits per cloned repository, or zero when nothing is cloned.
func (statistics Statistics) AverageCommits() float64 {
	if statistics.Cloned == 0 {
		return 0
	}
	return float64(statistics.TotalCommits) / float64(statistics.Cloned)
}

// SearchQuery selects commits by message text and, optionally, author.
type SearchQuery struct {
	Text   string
	Author string
}

// SearchResult lists matching commits of one repository, newest first.
type SearchResult struct {
	Reference repository.Reference
	Matches   []repository.Commit
}

// Summaries looks up the last commit of every reference.
func (service *Service) Summaries(executionContext context.Context, references []repository.Reference) []CommitSummary {
	return service.collectSummaries(executionContext, references, summaryStepFetchingConstant)
}

// Export writes last-commit summaries to a timestamped JSON file inside outputDirectory.
func (service *Service) Export(executionContext context.Context, references []repository.Reference, outputDirectory string) (ExportReport, error) {
	summaries := service.collectSummaries(executionContext, references, exportStepConstant)
	exportTime := service.clock()

	exportPath := filepath.Join(outputDirectory, fmt.Sprintf(exportFileNameTemplateConstant, exportTime.Format(exportFileTimestampLayout)))
	document := exportDocument{
		ExportDate: exportTime.Format(documentTimestampLayout),
		TotalRepos: len(references),
		Summaries:  lo.Map(summaries, func(summary CommitSummary, _ int) summaryRecord { return newSummaryRecord(summary) }),
	}
	if writeError := service.writeDocument(exportPath, document); writeError != nil {
		return ExportReport{}, fmt.Errorf(exportWriteErrorTemplateConstant, exportPath, writeError)
	}

	service.logger.Info(exportWrittenMessageConstant,
		zap.String(logFieldPathConstant, exportPath),
		zap.Int(logFieldSummaryCountConstant, len(summaries)),
	)
	return ExportReport{Path: exportPath, Summaries: summaries}, nil
}

// History returns up to limit commits of one repository; a non-positive limit uses default_commit_limit.
func (service *Service) History(executionContext context.Context, identifier string, limit int) (repository.Reference, []repository.Commit, error) {
	reference, resolveError := service.Resolve(identifier)
	if resolveError != nil {
		return repository.Reference{}, nil, resolveError
	}
	if !reference.Exists {
		return reference, nil, fmt.Errorf(notClonedErrorTemplateConstant, batch.ErrNotCloned, reference.Identifier)
	}
	if limit <= 0 {
		limit = service.configuration.DefaultCommitLimit
	}
	commits, historyError := service.client.History(executionContext, reference, limit)
	return reference, commits, historyError
}

// Statistics measures every cloned reference. Repositories that cannot be measured count as cloned but contribute nothing else.
func (service *Service) Statistics(executionContext context.Context, references []repository.Reference) Statistics {
	references = service.Refresh(references)
	clonedReferences := lo.Filter(references, func(reference repository.Reference, _ int) bool { return reference.Exists })

	measured := make([]RepositoryStatistics, 0, len(clonedReferences))
	for index, reference := range clonedReferences {
		if executionContext.Err() != nil {
			break
		}
		repositoryStatistics, measureError := service.measure(executionContext, reference)
		service.stepObserver.StepCompleted(StepEvent{Completed: index + 1, Total: len(clonedReferences), Identifier: reference.Identifier, Status: statisticsStepConstant})
		if measureError != nil {
			service.logger.Warn(statisticsFailedMessageConstant, zap.String(logFieldRepositoryConstant, reference.Identifier), zap.Error(measureError))
			continue
		}
		measured = append(measured, repositoryStatistics)
	}

	return Statistics{
		TotalRepositories: len(references),
		Cloned:            len(clonedReferences),
		NotCloned:         len(references) - len(clonedReferences),
		TotalSizeBytes:    lo.SumBy(measured, func(entry RepositoryStatistics) int64 { return entry.SizeBytes }),
		TotalCommits:      lo.SumBy(measured, func(entry RepositoryStatistics) int { return entry.CommitCount }),
		Repositories:      measured,
	}
}

// Search scans the most recent commits of every cloned reference for query text, ignoring case.
func (service *Service) Search(executionContext context.Context, references []repository.Reference, query SearchQuery) ([]SearchResult, error) {
	if len(strings.TrimSpace(query.Text)) == 0 {
		return nil, ErrEmptySearchQuery
	}

	clonedReferences := lo.Filter(service.Refresh(references), func(reference repository.Reference, _ int) bool { return reference.Exists })
	results := []SearchResult{}
	for index, reference := range clonedReferences {
		if contextError := executionContext.Err(); contextError != nil {
			return results, contextError
		}
		matches, searchError := service.client.SearchCommits(executionContext, reference, gitclient.SearchQuery{
			Text:      strings.TrimSpace(query.Text),
			Author:    query.Author,
			ScanLimit: searchScanLimitConstant,
		})
		service.stepObserver.StepCompleted(StepEvent{Completed: index + 1, Total: len(clonedReferences), Identifier: reference.Identifier, Status: searchStepConstant})
		if searchError != nil {
			service.logger.Debug(searchFailedMessageConstant, zap.String(logFieldRepositoryConstant, reference.Identifier), zap.Error(searchError))
			continue
		}
		if len(matches) > 0 {
			results = append(results, SearchResult{Reference: reference, Matches: matches})
		}
	}
	return results, nil
}

// FilterRepositories narrows references by a case-insensitive regular expression.
// An invalid pattern returns the references unchanged together with the error.
func (service *Service) FilterRepositories(references []repository.Reference, pattern string) ([]repository.Reference, error) {
	if len(strings.TrimSpace(pattern)) == 0 {
		return references, ErrEmptyFilterPattern
	}
	return repository.Filter(service.Refresh(references), strings.TrimSpace(pattern))
}

func (service *Service) collectSummaries(executionContext context.Context, references []repository.Reference, stepStatus string) []CommitSummary {
	references = service.Refresh(references)
	summaries := make([]CommitSummary, 0, len(references))
	for index, reference := range references {
		summaries = append(summaries, service.summarize(executionContext, reference))
		service.stepObserver.StepCompleted(StepEvent{Completed: index + 1, Total: len(references), Identifier: reference.Identifier, Status: stepStatus})
	}
	return summaries
}

func (service *Service) summarize(executionContext context.Context, reference repository.Reference) CommitSummary {
	if !reference.Exists {
		return CommitSummary{Reference: reference, Status: SummaryStatusNotCloned}
	}
	if contextError := executionContext.Err(); contextError != nil {
		return CommitSummary{Reference: reference, Status: SummaryStatusError, ErrorDetail: contextError.Error()}
	}
	lastCommit, lookupError := service.client.LastCommit(executionContext, reference)
	if lookupError != nil {
		return CommitSummary{Reference: reference, Status: SummaryStatusError, ErrorDetail: lookupError.Error()}
	}
	return CommitSummary{Reference: reference, Status: SummaryStatusAvailable, LastCommit: &lastCommit}
}

func (service *Service) measure(executionContext context.Context, reference repository.Reference) (RepositoryStatistics, error) {
	var sizeBytes int64
	walkError := service.fileSystem.WalkDir(reference.LocalPath, func(_ string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, infoError := entry.Info()
		if infoError != nil {
			return infoError
		}
		sizeBytes += info.Size()
		return nil
	})
	if walkError != nil {
		return RepositoryStatistics{}, walkError
	}

	commitCount, countError := service.client.CommitCount(executionContext, reference)
	if countError != nil {
		return RepositoryStatistics{}, countError
	}
	return RepositoryStatistics{Reference: reference, SizeBytes: sizeBytes, CommitCount: commitCount}, nil
}
