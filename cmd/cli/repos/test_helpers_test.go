package repos_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	repos "github.com/temirov/reposcloner/cmd/cli/repos"
	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/execshell"
	"github.com/temirov/reposcloner/internal/gitclient"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/workspace"
)

var errFakeRemoteUnavailable = errors.New("remote unavailable")

// fakeRepositoryClient simulates git by creating and inspecting directories.
type fakeRepositoryClient struct {
	mutex      sync.Mutex
	failing    map[string]bool
	newCommits map[string]int
	commits    map[string][]repository.Commit
	operations []string
	observer   execshell.CommandEventObserver
}

func newFakeRepositoryClient() *fakeRepositoryClient {
	return &fakeRepositoryClient{
		failing:    map[string]bool{},
		newCommits: map[string]int{},
		commits:    map[string][]repository.Commit{},
	}
}

func (client *fakeRepositoryClient) record(operation string, reference repository.Reference) bool {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.operations = append(client.operations, operation+":"+reference.Identifier)
	command := execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{operation}}}
	failing := client.failing[reference.Identifier]
	if client.observer != nil {
		client.observer.CommandStarted(command)
		exitCode := 0
		if failing {
			exitCode = 1
		}
		client.observer.CommandCompleted(command, execshell.ExecutionResult{ExitCode: exitCode})
	}
	return failing
}

func (client *fakeRepositoryClient) Clone(_ context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if client.record("clone", reference) {
		return batch.OperationReport{}, errFakeRemoteUnavailable
	}
	if repository.DirectoryExists(repository.OSFileSystem{}, reference.LocalPath) {
		return batch.OperationReport{Status: batch.StatusAlreadyCloned}, nil
	}
	if mkdirError := os.MkdirAll(reference.LocalPath, 0o755); mkdirError != nil {
		return batch.OperationReport{}, mkdirError
	}
	return batch.OperationReport{Status: batch.StatusCloned}, nil
}

func (client *fakeRepositoryClient) Update(_ context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if client.record("update", reference) {
		return batch.OperationReport{}, errFakeRemoteUnavailable
	}
	if !repository.DirectoryExists(repository.OSFileSystem{}, reference.LocalPath) {
		return batch.OperationReport{}, batch.Permanent(fmt.Errorf("%w: %s", batch.ErrNotCloned, reference.LocalPath))
	}
	client.mutex.Lock()
	commitCount := client.newCommits[reference.Identifier]
	client.mutex.Unlock()
	if commitCount == 0 {
		return batch.OperationReport{Status: batch.StatusNoChanges}, nil
	}
	newCommits := make([]repository.Commit, 0, commitCount)
	for commitIndex := 0; commitIndex < commitCount; commitIndex++ {
		newCommits = append(newCommits, repository.Commit{Hash: fmt.Sprintf("%040d", commitIndex), Message: "change"})
	}
	return batch.OperationReport{Status: batch.StatusUpdated, NewCommits: newCommits}, nil
}

func (client *fakeRepositoryClient) Reclone(executionContext context.Context, reference repository.Reference) (batch.OperationReport, error) {
	if client.record("reclone", reference) {
		return batch.OperationReport{}, errFakeRemoteUnavailable
	}
	if removeError := os.RemoveAll(reference.LocalPath); removeError != nil {
		return batch.OperationReport{}, removeError
	}
	if mkdirError := os.MkdirAll(reference.LocalPath, 0o755); mkdirError != nil {
		return batch.OperationReport{}, mkdirError
	}
	return batch.OperationReport{Status: batch.StatusRecloned}, nil
}

func (client *fakeRepositoryClient) LastCommit(_ context.Context, reference repository.Reference) (repository.Commit, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	commits := client.commits[reference.Identifier]
	if len(commits) == 0 {
		return repository.Commit{}, gitclient.ErrNoCommits
	}
	return commits[0], nil
}

func (client *fakeRepositoryClient) History(_ context.Context, reference repository.Reference, limit int) ([]repository.Commit, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	commits := client.commits[reference.Identifier]
	if limit < len(commits) {
		commits = commits[:limit]
	}
	return commits, nil
}

func (client *fakeRepositoryClient) SearchCommits(_ context.Context, reference repository.Reference, query gitclient.SearchQuery) ([]repository.Commit, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	matches := []repository.Commit{}
	for _, commit := range client.commits[reference.Identifier] {
		if len(query.Author) > 0 && !strings.Contains(commit.Author, query.Author) {
			continue
		}
		if strings.Contains(strings.ToLower(commit.Message), strings.ToLower(query.Text)) {
			matches = append(matches, commit)
		}
	}
	return matches, nil
}

func (client *fakeRepositoryClient) CommitCount(_ context.Context, reference repository.Reference) (int, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return len(client.commits[reference.Identifier]), nil
}

type commandTestEnvironment struct {
	configuration workspace.Configuration
	client        *fakeRepositoryClient
	root          string
}

func newCommandTestEnvironment(testInstance *testing.T, identifiers ...string) *commandTestEnvironment {
	testInstance.Helper()
	root := testInstance.TempDir()
	listPath := filepath.Join(root, "repos.txt")
	require.NoError(testInstance, os.WriteFile(listPath, []byte(strings.Join(identifiers, "\n")+"\n"), 0o644))

	configuration := workspace.DefaultConfiguration()
	configuration.RepositoriesDirectory = filepath.Join(root, "repos")
	configuration.RepositoriesFile = listPath
	configuration.ResultsFile = filepath.Join(root, "changes_results.json")
	configuration.MaxRetries = 1
	configuration.RetryDelay = 0
	configuration.MaxWorkers = 2

	return &commandTestEnvironment{configuration: configuration, client: newFakeRepositoryClient(), root: root}
}

func (environment *commandTestEnvironment) repositoryPath(identifier string) string {
	return filepath.Join(environment.configuration.RepositoriesDirectory, repository.LocalDirectoryName(identifier))
}

func (environment *commandTestEnvironment) markCloned(testInstance *testing.T, identifiers ...string) {
	testInstance.Helper()
	for _, identifier := range identifiers {
		require.NoError(testInstance, os.MkdirAll(environment.repositoryPath(identifier), 0o755))
	}
}

func (environment *commandTestEnvironment) dependencies() repos.Dependencies {
	return repos.Dependencies{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() workspace.Configuration {
			return environment.configuration
		},
		ClientFactory: func(_ workspace.Configuration, _ *zap.Logger, observer execshell.CommandEventObserver) (workspace.RepositoryClient, error) {
			environment.client.observer = observer
			return environment.client, nil
		},
	}
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

func executeCommand(testInstance *testing.T, builder commandBuilder, input string, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	executionContext, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outputBuffer := &bytes.Buffer{}
	command.SetContext(executionContext)
	command.SetIn(strings.NewReader(input))
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func sampleCommits(author string, messages ...string) []repository.Commit {
	commits := make([]repository.Commit, 0, len(messages))
	for messageIndex, message := range messages {
		commits = append(commits, repository.Commit{
			Hash:    fmt.Sprintf("%07d%033d", messageIndex+1, 0),
			Author:  author,
			Date:    time.Date(2024, time.March, 1+messageIndex, 9, 30, 0, 0, time.UTC),
			Message: message,
		})
	}
	return commits
}
