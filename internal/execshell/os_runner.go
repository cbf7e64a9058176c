package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/samber/lo"
)

const (
	environmentSeparatorConstant = "="
	// Git leaves helpers such as git-remote-https holding its pipes; cap the wait for them after a cancel.
	processWaitDelayConstant = 5 * time.Second
)

// OSCommandRunner starts real processes for the shell executor.
type OSCommandRunner struct {
	waitDelay time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{waitDelay: processWaitDelayConstant}
}

// Run starts the process and waits for it. A non-zero exit is reported through
// ExecutionResult.ExitCode; the error return is reserved for processes that could
// not run at all or were stopped because the context ended.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var standardOutput, standardError bytes.Buffer
	process := runner.buildProcess(executionContext, command)
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{StandardOutput: standardOutput.String(), StandardError: standardError.String()}
	if runError == nil {
		return result, nil
	}
	var exitError *exec.ExitError
	if !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	result.ExitCode = exitError.ExitCode()
	return result, nil
}

func (runner *OSCommandRunner) buildProcess(executionContext context.Context, command ShellCommand) *exec.Cmd {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.WaitDelay = runner.waitDelay
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = append(os.Environ(), environmentAssignments(command.Details.EnvironmentVariables)...)
	}
	return process
}

// environmentAssignments renders overrides in key order; later entries win over the inherited environment.
func environmentAssignments(overrides map[string]string) []string {
	assignments := lo.MapToSlice(overrides, func(key string, value string) string {
		return key + environmentSeparatorConstant + value
	})
	sort.Strings(assignments)
	return assignments
}
