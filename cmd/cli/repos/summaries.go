package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	summariesUseConstant                  = "summaries"
	summariesShortDescription             = "Show the last commit of every repository"
	summariesAnnouncementTemplateConstant = "\nFetching last commit summaries for %d repositories...\n"
)

// SummariesCommandBuilder assembles the summaries command.
type SummariesCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the summaries command.
func (builder *SummariesCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   summariesUseConstant,
		Short: summariesShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *SummariesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}
	activeSession.summaries(command, references)
	return nil
}

func (activeSession *session) summaries(command *cobra.Command, references []repository.Reference) {
	activeSession.printf(summariesAnnouncementTemplateConstant, len(references))
	activeSession.reporter.CommitSummaries(activeSession.service.Summaries(commandContext(command), references))
}
