package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/gitclient"
	"github.com/temirov/reposcloner/internal/repository"
)

const (
	repositoriesDirectoryPermissions      = 0o755
	repositoriesDirectoryErrorTemplate    = "unable to create repositories directory %s: %w"
	resultsFileErrorTemplateConstant      = "unable to write results file %s: %w"
	resultsWrittenMessageConstant         = "batch results written"
	logFieldRunIdentifierConstant         = "run_id"
	logFieldOperationConstant             = "operation"
	logFieldPathConstant                  = "path"
	singleRepositoryWorkerLimitConstant   = 1
	clientNotConfiguredMessageConstant    = "repository client not configured"
	unknownOperationKindTemplateConstant  = "unknown operation kind %q"
	singleRepositoryResultMissingTemplate = "no result produced for %s"
)

// ErrRepositoryClientNotConfigured indicates a service constructed without a repository client.
var ErrRepositoryClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)

// RepositoryClient performs repository operations and reads commit history.
type RepositoryClient interface {
	batch.VersionControlClient
	LastCommit(executionContext context.Context, reference repository.Reference) (repository.Commit, error)
	History(executionContext context.Context, reference repository.Reference, limit int) ([]repository.Commit, error)
	SearchCommits(executionContext context.Context, reference repository.Reference, query gitclient.SearchQuery) ([]repository.Commit, error)
	CommitCount(executionContext context.Context, reference repository.Reference) (int, error)
}

// StepEvent reports progress of an inspection that visits repositories one by one.
type StepEvent struct {
	Completed  int
	Total      int
	Identifier string
	Status     string
}

// StepObserver receives StepEvent notifications.
type StepObserver interface {
	StepCompleted(event StepEvent)
}

// Dependencies collects collaborators of a Service. Only Client is required.
type Dependencies struct {
	Client              RepositoryClient
	FileSystem          repository.FileSystem
	ProgressObserver    batch.ProgressObserver
	StepObserver        StepObserver
	Logger              *zap.Logger
	Clock               func() time.Time
	IdentifierGenerator func() string
}

// BatchReport describes one completed clone, update, or reclone batch.
type BatchReport struct {
	RunIdentifier string
	Kind          batch.OperationKind
	Results       []batch.TaskResult
	Summary       batch.Summary
	ResultsFile   string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Service composes repository list loading, batch execution, and inspection features.
type Service struct {
	configuration       Configuration
	client              RepositoryClient
	fileSystem          repository.FileSystem
	listLoader          *repository.ListLoader
	progressObserver    batch.ProgressObserver
	stepObserver        StepObserver
	logger              *zap.Logger
	clock               func() time.Time
	identifierGenerator func() string
}

type noopStepObserver struct{}

func (noopStepObserver) StepCompleted(StepEvent) {}

// NewService validates configuration and wires the service.
func NewService(configuration Configuration, dependencies Dependencies) (*Service, error) {
	if dependencies.Client == nil {
		return nil, ErrRepositoryClientNotConfigured
	}
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}

	service := &Service{
		configuration:       configuration,
		client:              dependencies.Client,
		fileSystem:          dependencies.FileSystem,
		progressObserver:    dependencies.ProgressObserver,
		stepObserver:        dependencies.StepObserver,
		logger:              dependencies.Logger,
		clock:               dependencies.Clock,
		identifierGenerator: dependencies.IdentifierGenerator,
	}
	if service.fileSystem == nil {
		service.fileSystem = repository.OSFileSystem{}
	}
	if service.stepObserver == nil {
		service.stepObserver = noopStepObserver{}
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	if service.clock == nil {
		service.clock = time.Now
	}
	if service.identifierGenerator == nil {
		service.identifierGenerator = uuid.NewString
	}
	service.listLoader = repository.NewListLoader(service.fileSystem, service.logger)
	return service, nil
}

// Configuration returns the configuration the service was built with.
func (service *Service) Configuration() Configuration {
	return service.configuration
}

// LoadRepositories reads the configured repository list.
func (service *Service) LoadRepositories() ([]repository.Reference, error) {
	return service.listLoader.Load(service.configuration.RepositoriesFile, service.configuration.RepositoriesDirectory)
}

// Resolve builds a reference for a single identifier given on the command line.
func (service *Service) Resolve(identifier string) (repository.Reference, error) {
	return service.listLoader.Resolve(identifier, service.configuration.RepositoriesDirectory)
}

// Refresh re-reads the existence flag of each reference.
func (service *Service) Refresh(references []repository.Reference) []repository.Reference {
	return service.listLoader.Refresh(references)
}

// RunBatch executes kind against every reference and records the results file.
func (service *Service) RunBatch(executionContext context.Context, kind batch.OperationKind, references []repository.Reference, parallel bool) (BatchReport, error) {
	return service.runBatch(executionContext, kind, references, batch.RunOptions{Parallel: parallel, MaxWorkers: service.configuration.MaxWorkers}, true)
}

// Reclone deletes and clones a single repository. No results file is written.
func (service *Service) Reclone(executionContext context.Context, identifier string) (batch.TaskResult, error) {
	reference, resolveError := service.Resolve(identifier)
	if resolveError != nil {
		return batch.TaskResult{}, resolveError
	}
	report, runError := service.runBatch(executionContext, batch.OperationReclone, []repository.Reference{reference}, batch.RunOptions{Parallel: false, MaxWorkers: singleRepositoryWorkerLimitConstant}, false)
	if runError != nil {
		return batch.TaskResult{}, runError
	}
	result, found := lo.Find(report.Results, func(result batch.TaskResult) bool {
		return result.Reference.Identifier == reference.Identifier
	})
	if !found {
		return batch.TaskResult{}, fmt.Errorf(singleRepositoryResultMissingTemplate, reference.Identifier)
	}
	return result, nil
}

func (service *Service) runBatch(executionContext context.Context, kind batch.OperationKind, references []repository.Reference, options batch.RunOptions, writeResults bool) (BatchReport, error) {
	switch kind {
	case batch.OperationClone, batch.OperationUpdate, batch.OperationReclone:
	default:
		return BatchReport{}, fmt.Errorf(unknownOperationKindTemplateConstant, kind)
	}

	if kind != batch.OperationUpdate {
		if mkdirError := service.fileSystem.MkdirAll(service.configuration.RepositoriesDirectory, repositoriesDirectoryPermissions); mkdirError != nil {
			return BatchReport{}, fmt.Errorf(repositoriesDirectoryErrorTemplate, service.configuration.RepositoriesDirectory, mkdirError)
		}
	}

	if service.configuration.BatchTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, service.configuration.BatchTimeout)
		defer cancel()
	}

	report := BatchReport{
		RunIdentifier: service.identifierGenerator(),
		Kind:          kind,
		StartedAt:     service.clock(),
	}
	batchLogger := service.logger.With(
		zap.String(logFieldRunIdentifierConstant, report.RunIdentifier),
		zap.String(logFieldOperationConstant, string(kind)),
	)

	retryPolicy := batch.RetryPolicy{MaxAttempts: service.configuration.MaxRetries, Delay: service.configuration.RetryDelay}
	tasks := lo.Map(references, func(reference repository.Reference, _ int) *batch.Task {
		return batch.NewTask(reference, kind, service.client, retryPolicy, batchLogger)
	})

	results, runError := batch.NewRunner(service.progressObserver, batchLogger).Run(executionContext, tasks, options)
	if runError != nil {
		return BatchReport{}, runError
	}

	report.Results = results
	report.Summary = batch.Summarize(results)
	report.FinishedAt = service.clock()

	if writeResults && len(service.configuration.ResultsFile) > 0 {
		if writeError := service.writeResultsFile(report); writeError != nil {
			return report, fmt.Errorf(resultsFileErrorTemplateConstant, service.configuration.ResultsFile, writeError)
		}
		report.ResultsFile = service.configuration.ResultsFile
		batchLogger.Info(resultsWrittenMessageConstant, zap.String(logFieldPathConstant, report.ResultsFile))
	}

	return report, nil
}
