package repos

import (
	"github.com/spf13/cobra"
)

const (
	historyUseConstant          = "history <owner/name>"
	historyShortDescription     = "Show the commit history of one repository"
	historyLimitFlagName        = "limit"
	historyLimitFlagShorthand   = "n"
	historyLimitFlagDescription = "Number of commits to show (defaults to default_commit_limit)"
)

// HistoryCommandBuilder assembles the history command.
type HistoryCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the history command.
func (builder *HistoryCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   historyUseConstant,
		Short: historyShortDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	command.Flags().IntP(historyLimitFlagName, historyLimitFlagShorthand, 0, historyLimitFlagDescription)
	return command, nil
}

func (builder *HistoryCommandBuilder) run(command *cobra.Command, arguments []string) error {
	limit, _ := command.Flags().GetInt(historyLimitFlagName)

	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	return activeSession.history(command, arguments[0], limit)
}

func (activeSession *session) history(command *cobra.Command, identifier string, limit int) error {
	reference, commits, historyError := activeSession.service.History(commandContext(command), identifier, limit)
	if historyError != nil {
		return historyError
	}
	activeSession.reporter.History(reference, commits)
	return nil
}
