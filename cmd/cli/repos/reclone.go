package repos

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	recloneUseConstant             = "reclone <owner/name>"
	recloneShortDescription        = "Delete and clone a single repository"
	recloneLongDescription         = "reclone removes the working copy of one repository, retrying while files are in use, and clones it again."
	recloneFailureTemplateConstant = "%w: %s"
)

// ErrRecloneFailed indicates that a reclone finished with a failure outcome.
var ErrRecloneFailed = errors.New("reclone failed")

// RecloneCommandBuilder assembles the reclone command.
type RecloneCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the reclone command.
func (builder *RecloneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   recloneUseConstant,
		Short: recloneShortDescription,
		Long:  recloneLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *RecloneCommandBuilder) run(command *cobra.Command, arguments []string) error {
	activeSession, sessionError := newSession(command, builder.Dependencies, nil)
	if sessionError != nil {
		return sessionError
	}
	return activeSession.reclone(command, arguments[0])
}

func (activeSession *session) reclone(command *cobra.Command, identifier string) error {
	result, recloneError := activeSession.service.Reclone(commandContext(command), identifier)
	if recloneError != nil {
		return recloneError
	}
	activeSession.reporter.RecloneResult(result)
	if !result.Succeeded() {
		return fmt.Errorf(recloneFailureTemplateConstant, ErrRecloneFailed, result.Reference.Identifier)
	}
	return nil
}
