package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	statsUseConstant      = "stats"
	statsShortDescription = "Show repository counts, disk usage, and commit totals"
)

// StatsCommandBuilder assembles the stats command.
type StatsCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the stats command.
func (builder *StatsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statsUseConstant,
		Short: statsShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *StatsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}
	activeSession.statistics(command, references)
	return nil
}

func (activeSession *session) statistics(command *cobra.Command, references []repository.Reference) {
	activeSession.reporter.Statistics(activeSession.service.Statistics(commandContext(command), references))
}
