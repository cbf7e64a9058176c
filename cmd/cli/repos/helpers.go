package repos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/execshell"
	"github.com/temirov/reposcloner/internal/gitclient"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/ui"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	emptyRepositoryListTemplateConstant = "%w: no repositories found in %s; add repositories and try again"
	clientCreationErrorTemplateConstant = "unable to create git client: %w"
)

// ErrEmptyRepositoryList indicates a repository list without any usable identifier.
var ErrEmptyRepositoryList = errors.New("repository list is empty")

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the sanitized workspace configuration.
type ConfigurationProvider func() workspace.Configuration

// ClientFactory creates the repository client used by a command. The observer
// receives git command lifecycle events.
type ClientFactory func(configuration workspace.Configuration, logger *zap.Logger, observer execshell.CommandEventObserver) (workspace.RepositoryClient, error)

// Dependencies carries the collaborators shared by every repository command.
type Dependencies struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientFactory         ClientFactory
	FileSystem            repository.FileSystem
}

// NewGitClient builds the production client: git driven through os/exec.
func NewGitClient(configuration workspace.Configuration, logger *zap.Logger, observer execshell.CommandEventObserver) (workspace.RepositoryClient, error) {
	executor, executorError := execshell.NewObservedShellExecutor(logger, execshell.NewOSCommandRunner(), observer)
	if executorError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, executorError)
	}
	client, clientError := gitclient.NewClient(executor, repository.OSFileSystem{}, gitclient.Options{
		CloneURLTemplate: configuration.CloneURLTemplate,
		Logger:           logger,
	})
	if clientError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, clientError)
	}
	return client, nil
}

// session bundles the service and presentation helpers for one command invocation.
type session struct {
	service  *workspace.Service
	reporter *ui.Reporter
	tally    *ui.CommandTally
	output   io.Writer
	logger   *zap.Logger
}

func newSession(command *cobra.Command, dependencies Dependencies, adjust func(*workspace.Configuration)) (*session, error) {
	logger := resolveLogger(dependencies.LoggerProvider)
	configuration := resolveConfiguration(dependencies.ConfigurationProvider)
	if adjust != nil {
		adjust(&configuration)
	}

	clientFactory := dependencies.ClientFactory
	if clientFactory == nil {
		clientFactory = NewGitClient
	}

	tally := ui.NewCommandTally()
	client, clientError := clientFactory(configuration, logger, tally)
	if clientError != nil {
		return nil, clientError
	}

	output := command.OutOrStdout()
	progressRenderer := ui.NewProgressRenderer(output)
	service, serviceError := workspace.NewService(configuration, workspace.Dependencies{
		Client:           client,
		FileSystem:       dependencies.FileSystem,
		ProgressObserver: progressRenderer,
		StepObserver:     progressRenderer,
		Logger:           logger,
	})
	if serviceError != nil {
		return nil, serviceError
	}

	return &session{
		service:  service,
		reporter: ui.NewReporter(output),
		tally:    tally,
		output:   output,
		logger:   logger,
	}, nil
}

func (activeSession *session) loadRepositories() ([]repository.Reference, error) {
	references, loadError := activeSession.service.LoadRepositories()
	if loadError != nil {
		return nil, loadError
	}
	if len(references) == 0 {
		return nil, fmt.Errorf(emptyRepositoryListTemplateConstant, ErrEmptyRepositoryList, activeSession.service.Configuration().RepositoriesFile)
	}
	return references, nil
}

func (activeSession *session) printf(format string, arguments ...any) {
	fmt.Fprintf(activeSession.output, format, arguments...)
}

func commandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfiguration(provider ConfigurationProvider) workspace.Configuration {
	if provider == nil {
		return workspace.DefaultConfiguration()
	}
	return provider()
}

func joinArguments(arguments []string) string {
	return strings.TrimSpace(strings.Join(arguments, " "))
}
