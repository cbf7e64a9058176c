package ui

import (
	"sync/atomic"

	"github.com/temirov/reposcloner/internal/execshell"
)

// CommandActivity is a snapshot of external command counts.
type CommandActivity struct {
	Started int64
	Failed  int64
}

// CommandTally counts external commands for the batch summary footer.
// It implements execshell.CommandEventObserver and is safe for concurrent workers.
type CommandTally struct {
	started atomic.Int64
	failed  atomic.Int64
}

// NewCommandTally constructs an empty tally.
func NewCommandTally() *CommandTally {
	return &CommandTally{}
}

// CommandStarted counts a command about to run.
func (tally *CommandTally) CommandStarted(execshell.ShellCommand) {
	if tally == nil {
		return
	}
	tally.started.Add(1)
}

// CommandCompleted counts non-zero exits as failures.
func (tally *CommandTally) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	if tally == nil || result.ExitCode == 0 {
		return
	}
	tally.failed.Add(1)
}

// CommandExecutionFailed counts commands that could not be run at all.
func (tally *CommandTally) CommandExecutionFailed(execshell.ShellCommand, error) {
	if tally == nil {
		return
	}
	tally.failed.Add(1)
}

// Snapshot returns the current counts.
func (tally *CommandTally) Snapshot() CommandActivity {
	if tally == nil {
		return CommandActivity{}
	}
	return CommandActivity{Started: tally.started.Load(), Failed: tally.failed.Load()}
}

// Reset clears the counts so the next batch starts from zero.
func (tally *CommandTally) Reset() {
	if tally == nil {
		return
	}
	tally.started.Store(0)
	tally.failed.Store(0)
}
