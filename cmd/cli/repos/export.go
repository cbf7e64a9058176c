package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/reposcloner/internal/repository"
)

const (
	exportUseConstant                  = "export"
	exportShortDescription             = "Export last commit summaries to a JSON file"
	exportOutputDirectoryFlagName      = "output-dir"
	exportOutputDirectoryDescription   = "Directory that receives commit_summaries_<timestamp>.json"
	exportDefaultOutputDirectory       = "."
	exportAnnouncementTemplateConstant = "\nExporting commit summaries for %d repositories...\n"
)

// ExportCommandBuilder assembles the export command.
type ExportCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the export command.
func (builder *ExportCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   exportUseConstant,
		Short: exportShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().String(exportOutputDirectoryFlagName, exportDefaultOutputDirectory, exportOutputDirectoryDescription)
	return command, nil
}

func (builder *ExportCommandBuilder) run(command *cobra.Command, arguments []string) error {
	outputDirectory, _ := command.Flags().GetString(exportOutputDirectoryFlagName)

	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	references, loadError := activeSession.loadRepositories()
	if loadError != nil {
		return loadError
	}
	return activeSession.export(command, references, outputDirectory)
}

func (activeSession *session) export(command *cobra.Command, references []repository.Reference, outputDirectory string) error {
	activeSession.printf(exportAnnouncementTemplateConstant, len(references))
	report, exportError := activeSession.service.Export(commandContext(command), references, outputDirectory)
	if exportError != nil {
		return exportError
	}
	activeSession.reporter.ExportCompleted(report)
	return nil
}
