package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForCloneIncludesSourceAndDestination(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"clone", "--quiet", "https://github.com/owner/name.git", "/repos/owner_name"},
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Cloning https://github.com/owner/name.git into /repos/owner_name", message)
}

func TestBuildFailureMessageForResetIncludesTargetAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"reset", "--hard", "origin/main"},
			WorkingDirectory: "/repos/owner_name",
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 128, StandardError: "fatal: ambiguous argument\n"})

	require.Equal(t, "Failed to reset /repos/owner_name to origin/main (exit code 128: fatal: ambiguous argument)", message)
}

func TestBuildFetchMessageWithoutRemoteUsesDefaultRemoteLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"fetch", "--quiet"},
			WorkingDirectory: "/repos/owner_name",
		},
	}

	require.Equal(t, "Fetched from default remote in /repos/owner_name", formatter.BuildSuccessMessage(command))
}

func TestBuildExecutionFailureMessageForUnknownSubcommandFallsBackToGenericLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"gc", "--auto"},
		},
	}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("killed"))

	require.Equal(t, "git gc --auto failed: killed", message)
}
