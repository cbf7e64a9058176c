package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/batch"
)

// CommandSetBuilder assembles every repository command with shared dependencies.
type CommandSetBuilder struct {
	Dependencies Dependencies
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Build constructs the repository commands in menu order.
func (builder *CommandSetBuilder) Build() ([]*cobra.Command, error) {
	builders := []commandBuilder{
		&BatchCommandBuilder{Kind: batch.OperationClone, Dependencies: builder.Dependencies},
		&BatchCommandBuilder{Kind: batch.OperationUpdate, Dependencies: builder.Dependencies},
		&SummariesCommandBuilder{Dependencies: builder.Dependencies},
		&HistoryCommandBuilder{Dependencies: builder.Dependencies},
		&RecloneCommandBuilder{Dependencies: builder.Dependencies},
		&ExportCommandBuilder{Dependencies: builder.Dependencies},
		&StatsCommandBuilder{Dependencies: builder.Dependencies},
		&FilterCommandBuilder{Dependencies: builder.Dependencies},
		&SearchCommandBuilder{Dependencies: builder.Dependencies},
		&MenuCommandBuilder{Dependencies: builder.Dependencies},
	}

	commands := make([]*cobra.Command, 0, len(builders))
	for _, candidate := range builders {
		command, buildError := candidate.Build()
		if buildError != nil {
			return nil, buildError
		}
		commands = append(commands, command)
	}
	return commands, nil
}
