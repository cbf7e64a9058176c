package workspace

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
)

const (
	documentFilePermissions        = 0o644
	documentIndentConstant         = "  "
	exportFileNameTemplateConstant = "commit_summaries_%s.json"
	exportFileTimestampLayout      = "20060102_150405"
	documentTimestampLayout        = time.RFC3339
)

type commitRecord struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date,omitempty"`
}

type resultRecord struct {
	Repository      string         `json:"repo"`
	Status          batch.Status   `json:"status"`
	Message         string         `json:"message,omitempty"`
	Attempts        int            `json:"attempts"`
	OldCommit       string         `json:"old_commit,omitempty"`
	NewCommit       string         `json:"new_commit,omitempty"`
	NewCommitsCount int            `json:"new_commits_count,omitempty"`
	NewCommits      []commitRecord `json:"new_commits,omitempty"`
}

type resultsDocument struct {
	RunIdentifier string         `json:"run_id"`
	Operation     string         `json:"operation"`
	StartedAt     string         `json:"started_at"`
	FinishedAt    string         `json:"finished_at"`
	Results       []resultRecord `json:"results"`
}

type summaryRecord struct {
	Repository string        `json:"repo"`
	LastCommit *commitRecord `json:"last_commit,omitempty"`
	Status     SummaryStatus `json:"status,omitempty"`
	Message    string        `json:"message,omitempty"`
}

type exportDocument struct {
	ExportDate string          `json:"export_date"`
	TotalRepos int             `json:"total_repos"`
	Summaries  []summaryRecord `json:"summaries"`
}

func newCommitRecord(commit repository.Commit) commitRecord {
	record := commitRecord{Hash: commit.Hash, Message: commit.Message, Author: commit.Author}
	if !commit.Date.IsZero() {
		record.Date = commit.Date.Format(documentTimestampLayout)
	}
	return record
}

func newResultRecord(result batch.TaskResult) resultRecord {
	return resultRecord{
		Repository:      result.Reference.Identifier,
		Status:          result.Status,
		Message:         result.ErrorDetail,
		Attempts:        result.Attempts,
		OldCommit:       result.OldRevision,
		NewCommit:       result.NewRevision,
		NewCommitsCount: result.NewCommitCount,
		NewCommits:      lo.Map(result.NewCommits, func(commit repository.Commit, _ int) commitRecord { return newCommitRecord(commit) }),
	}
}

func newSummaryRecord(summary CommitSummary) summaryRecord {
	record := summaryRecord{Repository: summary.Reference.Identifier, Message: summary.ErrorDetail}
	if summary.LastCommit != nil {
		lastCommit := newCommitRecord(*summary.LastCommit)
		record.LastCommit = &lastCommit
		return record
	}
	record.Status = summary.Status
	return record
}

func (service *Service) writeResultsFile(report BatchReport) error {
	document := resultsDocument{
		RunIdentifier: report.RunIdentifier,
		Operation:     string(report.Kind),
		StartedAt:     report.StartedAt.Format(documentTimestampLayout),
		FinishedAt:    report.FinishedAt.Format(documentTimestampLayout),
		Results:       lo.Map(report.Results, func(result batch.TaskResult, _ int) resultRecord { return newResultRecord(result) }),
	}
	return service.writeDocument(service.configuration.ResultsFile, document)
}

func (service *Service) writeDocument(path string, document any) error {
	encodedDocument, encodeError := json.MarshalIndent(document, "", documentIndentConstant)
	if encodeError != nil {
		return encodeError
	}
	if directory := filepath.Dir(path); directory != "." {
		if mkdirError := service.fileSystem.MkdirAll(directory, repositoriesDirectoryPermissions); mkdirError != nil {
			return mkdirError
		}
	}
	return service.fileSystem.WriteFile(path, append(encodedDocument, '\n'), documentFilePermissions)
}
