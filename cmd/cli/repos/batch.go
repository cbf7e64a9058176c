package repos

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/batch"
	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/utils/flags"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	parallelFlagName                  = "parallel"
	parallelFlagShorthand             = "p"
	parallelFlagDescription           = "Process repositories concurrently (defaults to auto_parallel)"
	maxWorkersFlagName                = "max-workers"
	maxWorkersFlagDescription         = "Maximum concurrent repositories in parallel mode (defaults to max_workers)"
	unsupportedOperationTemplate      = "unsupported batch operation %q"
	batchAnnouncementTemplateConstant = "\n%s %d repositories...\n"
)

type batchCommandDescription struct {
	use          string
	short        string
	long         string
	announcement string
}

var batchCommandDescriptions = map[batch.OperationKind]batchCommandDescription{
	batch.OperationClone: {
		use:          "clone",
		short:        "Clone every listed repository that is not cloned yet",
		long:         "clone clones each repository from the list into repos_dir, retrying transient failures, and writes the results file.",
		announcement: "Cloning",
	},
	batch.OperationUpdate: {
		use:          "update",
		short:        "Update every cloned repository",
		long:         "update pulls each repository, falls back to a hard reset onto the remote branch when the pull fails, and reports new commits.",
		announcement: "Updating",
	},
}

// BatchCommandBuilder assembles the clone and update commands.
type BatchCommandBuilder struct {
	Kind         batch.OperationKind
	Dependencies Dependencies
}

// Build constructs the command for the configured operation kind.
func (builder *BatchCommandBuilder) Build() (*cobra.Command, error) {
	description, supported := batchCommandDescriptions[builder.Kind]
	if !supported {
		return nil, fmt.Errorf(unsupportedOperationTemplate, builder.Kind)
	}

	var parallel bool
	var maxWorkers int

	command := &cobra.Command{
		Use:   description.use,
		Short: description.short,
		Long:  description.long,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, description, parallel, maxWorkers)
		},
	}

	flags.AddToggleFlag(command.Flags(), &parallel, parallelFlagName, parallelFlagShorthand, true, parallelFlagDescription)
	command.Flags().IntVar(&maxWorkers, maxWorkersFlagName, 0, maxWorkersFlagDescription)

	return command, nil
}

func (builder *BatchCommandBuilder) run(command *cobra.Command, description batchCommandDescription, parallel bool, maxWorkers int) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, func(configuration *workspace.Configuration) {
		if command.Flags().Changed(maxWorkersFlagName) {
			configuration.MaxWorkers = maxWorkers
		}
	})
	if sessionError != nil {
		return sessionError
	}

	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}

	useParallel := activeSession.service.Configuration().AutoParallel
	if command.Flags().Changed(parallelFlagName) {
		useParallel = parallel
	}

	return activeSession.runBatch(command, builder.Kind, description.announcement, references, useParallel)
}

func (activeSession *session) runBatch(command *cobra.Command, kind batch.OperationKind, announcement string, references []repository.Reference, parallel bool) error {
	activeSession.tally.Reset()
	activeSession.printf(batchAnnouncementTemplateConstant, announcement, len(references))

	report, runError := activeSession.service.RunBatch(commandContext(command), kind, references, parallel)
	if runError != nil && len(report.Results) == 0 {
		return runError
	}
	activeSession.reporter.BatchSummary(report, activeSession.tally.Snapshot())
	return runError
}
