package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	filterUseConstant      = "filter <pattern>"
	filterShortDescription = "List repositories whose identifier matches a regular expression"
	filterLongDescription  = "filter matches the pattern case-insensitively anywhere in owner/name and shows whether each match is cloned."
)

// FilterCommandBuilder assembles the filter command.
type FilterCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the filter command.
func (builder *FilterCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   filterUseConstant,
		Short: filterShortDescription,
		Long:  filterLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *FilterCommandBuilder) run(command *cobra.Command, arguments []string) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}
	_, filterError := activeSession.filter(references, arguments[0])
	return filterError
}

func (activeSession *session) filter(references []repository.Reference, pattern string) ([]repository.Reference, error) {
	matches, filterError := activeSession.service.FilterRepositories(references, pattern)
	if filterError != nil {
		return nil, filterError
	}
	activeSession.reporter.FilterResults(pattern, matches)
	return matches, nil
}
