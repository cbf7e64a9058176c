package gitclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/reposcloner/internal/execshell"
	"github.com/temirov/reposcloner/internal/repository"
)

const (
	gitLogSubcommandConstant    = "log"
	commitFieldSeparator        = "\x1f"
	commitRecordSeparator       = "\x1e"
	commitFieldCountConstant    = 4
	commitLogFormatFlagConstant = "--format=%H%x1f%an%x1f%aI%x1f%B%x1e"
	malformedRecordTemplate     = "malformed commit record %q"
	commitDateErrorTemplate     = "unable to parse commit date %q: %w"
)

// ErrNoCommits indicates a repository without any commit on HEAD.
var ErrNoCommits = errors.New("repository has no commits")

func (client *Client) readLog(executionContext context.Context, workingDirectory string, extraArguments ...string) ([]repository.Commit, error) {
	arguments := append([]string{gitLogSubcommandConstant, commitLogFormatFlagConstant}, extraArguments...)
	executionResult, logError := client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
	})
	if logError != nil {
		return nil, logError
	}
	return parseCommitLog(executionResult.StandardOutput)
}

// parseCommitLog decodes records produced by commitLogFormatFlagConstant.
func parseCommitLog(output string) ([]repository.Commit, error) {
	commits := []repository.Commit{}
	for _, record := range strings.Split(output, commitRecordSeparator) {
		record = strings.TrimLeft(record, "\r\n")
		if len(strings.TrimSpace(record)) == 0 {
			continue
		}
		fields := strings.SplitN(record, commitFieldSeparator, commitFieldCountConstant)
		if len(fields) != commitFieldCountConstant {
			return nil, fmt.Errorf(malformedRecordTemplate, record)
		}
		commitDate, parseError := time.Parse(time.RFC3339, strings.TrimSpace(fields[2]))
		if parseError != nil {
			return nil, fmt.Errorf(commitDateErrorTemplate, fields[2], parseError)
		}
		commits = append(commits, repository.Commit{
			Hash:    strings.TrimSpace(fields[0]),
			Author:  fields[1],
			Date:    commitDate,
			Message: strings.TrimSpace(fields[3]),
		})
	}
	return commits, nil
}
