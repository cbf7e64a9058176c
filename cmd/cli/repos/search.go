package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/repository"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	searchUseConstant                  = "search <query>"
	searchShortDescription             = "Search recent commit messages across repositories"
	searchLongDescription              = "search looks for the query, case-insensitively, in the 100 most recent commit messages of every cloned repository."
	searchAuthorFlagName               = "author"
	searchAuthorFlagShorthand          = "a"
	searchAuthorFlagDescription        = "Only match commits whose author contains this value"
	searchAnnouncementTemplateConstant = "\nSearching for '%s' in commit messages...\n"
)

// SearchCommandBuilder assembles the search command.
type SearchCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the search command.
func (builder *SearchCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   searchUseConstant,
		Short: searchShortDescription,
		Long:  searchLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().StringP(searchAuthorFlagName, searchAuthorFlagShorthand, "", searchAuthorFlagDescription)
	return command, nil
}

func (builder *SearchCommandBuilder) run(command *cobra.Command, arguments []string) error {
	author, _ := command.Flags().GetString(searchAuthorFlagName)

	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}
	return activeSession.search(command, references, workspace.SearchQuery{Text: joinArguments(arguments), Author: author})
}

func (activeSession *session) search(command *cobra.Command, references []repository.Reference, query workspace.SearchQuery) error {
	activeSession.printf(searchAnnouncementTemplateConstant, query.Text)
	results, searchError := activeSession.service.Search(commandContext(command), references, query)
	if searchError != nil {
		return searchError
	}
	activeSession.reporter.SearchResults(query.Text, results)
	return nil
}
