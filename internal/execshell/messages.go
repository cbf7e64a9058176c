package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitPullSubcommandNameConstant     = "pull"
	gitFetchSubcommandNameConstant    = "fetch"
	gitResetSubcommandNameConstant    = "reset"
	gitLogSubcommandNameConstant      = "log"
	gitConfigSubcommandNameConstant   = "config"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitAbbrevRefFlagConstant          = "--abbrev-ref"
)

const (
	gitCloneStartTemplateConstant               = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant             = "Cloned %s into %s"
	gitCloneFailureTemplateConstant             = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant    = "Unable to clone %s into %s: %s"
	gitPullStartTemplateConstant                = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant              = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant              = "Failed to pull in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant     = "Unable to pull in %s: %s"
	gitFetchStartTemplateConstant               = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant             = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant             = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant    = "Unable to fetch from %s in %s: %s"
	gitFetchDefaultRemoteLabelConstant          = "default remote"
	gitResetStartTemplateConstant               = "Resetting %s to %s"
	gitResetSuccessTemplateConstant             = "Reset %s to %s"
	gitResetFailureTemplateConstant             = "Failed to reset %s to %s (exit code %d%s)"
	gitResetExecutionFailureTemplateConstant    = "Unable to reset %s to %s: %s"
	gitLogStartTemplateConstant                 = "Reading commit log in %s"
	gitLogSuccessTemplateConstant               = "Read commit log in %s"
	gitLogFailureTemplateConstant               = "Failed to read commit log in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant      = "Unable to read commit log in %s: %s"
	gitConfigStartTemplateConstant              = "Setting %s in %s"
	gitConfigSuccessTemplateConstant            = "Set %s in %s"
	gitConfigFailureTemplateConstant            = "Failed to set %s in %s (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant   = "Unable to set %s in %s: %s"
	gitBranchLookupStartTemplateConstant        = "Identifying current branch in %s"
	gitBranchLookupSuccessTemplateConstant      = "Identified current branch in %s"
	gitBranchLookupFailureTemplateConstant      = "Failed to identify current branch in %s (exit code %d%s)"
	gitBranchLookupExecutionFailureTemplate     = "Unable to identify current branch in %s: %s"
	gitRevisionLookupStartTemplateConstant      = "Resolving %s in %s"
	gitRevisionLookupSuccessTemplateConstant    = "Resolved %s in %s"
	gitRevisionLookupFailureTemplateConstant    = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionLookupExecutionFailureTemplate   = "Unable to resolve %s in %s: %s"
	gitCommitCountStartTemplateConstant         = "Counting commits in %s"
	gitCommitCountSuccessTemplateConstant       = "Counted commits in %s"
	gitCommitCountFailureTemplateConstant       = "Failed to count commits in %s (exit code %d%s)"
	gitCommitCountExecutionFailureTemplateConst = "Unable to count commits in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// stageTemplates holds one template per lifecycle stage. Failure templates take the
// exit code and the standard error suffix; execution failure templates take the failure text.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandNameConstant:
		source, destination := formatter.extractCloneEndpoints(arguments[1:])
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitCloneStartTemplateConstant,
			success:          gitCloneSuccessTemplateConstant,
			failure:          gitCloneFailureTemplateConstant,
			executionFailure: gitCloneExecutionFailureTemplateConstant,
		}, source, destination)
	case gitPullSubcommandNameConstant:
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitPullStartTemplateConstant,
			success:          gitPullSuccessTemplateConstant,
			failure:          gitPullFailureTemplateConstant,
			executionFailure: gitPullExecutionFailureTemplateConstant,
		}, workingDirectory)
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.extractFirstNonFlagArgument(arguments[1:])
		if len(remoteName) == 0 {
			remoteName = gitFetchDefaultRemoteLabelConstant
		}
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, remoteName, workingDirectory)
	case gitResetSubcommandNameConstant:
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitResetStartTemplateConstant,
			success:          gitResetSuccessTemplateConstant,
			failure:          gitResetFailureTemplateConstant,
			executionFailure: gitResetExecutionFailureTemplateConstant,
		}, workingDirectory, formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])))
	case gitLogSubcommandNameConstant:
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitLogStartTemplateConstant,
			success:          gitLogSuccessTemplateConstant,
			failure:          gitLogFailureTemplateConstant,
			executionFailure: gitLogExecutionFailureTemplateConstant,
		}, workingDirectory)
	case gitConfigSubcommandNameConstant:
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitConfigStartTemplateConstant,
			success:          gitConfigSuccessTemplateConstant,
			failure:          gitConfigFailureTemplateConstant,
			executionFailure: gitConfigExecutionFailureTemplateConstant,
		}, formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:])), workingDirectory)
	case gitRevParseSubcommandNameConstant:
		if containsArgument(arguments, gitAbbrevRefFlagConstant) {
			return formatter.render(stage, result, failure, stageTemplates{
				start:            gitBranchLookupStartTemplateConstant,
				success:          gitBranchLookupSuccessTemplateConstant,
				failure:          gitBranchLookupFailureTemplateConstant,
				executionFailure: gitBranchLookupExecutionFailureTemplate,
			}, workingDirectory)
		}
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitRevisionLookupStartTemplateConstant,
			success:          gitRevisionLookupSuccessTemplateConstant,
			failure:          gitRevisionLookupFailureTemplateConstant,
			executionFailure: gitRevisionLookupExecutionFailureTemplate,
		}, formatter.resolveRevisionReference(arguments[1:]), workingDirectory)
	case gitRevListSubcommandNameConstant:
		return formatter.render(stage, result, failure, stageTemplates{
			start:            gitCommitCountStartTemplateConstant,
			success:          gitCommitCountSuccessTemplateConstant,
			failure:          gitCommitCountFailureTemplateConstant,
			executionFailure: gitCommitCountExecutionFailureTemplateConst,
		}, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) render(stage messageStage, result ExecutionResult, failure error, templates stageTemplates, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureArguments...)
	case messageStageExecutionFailure:
		failureArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, failureArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractCloneEndpoints(arguments []string) (string, string) {
	positional := make([]string, 0, 2)
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "-") {
			continue
		}
		positional = append(positional, trimmed)
	}
	source := fallbackUnknownValueLabelConstant
	destination := defaultWorkingDirectoryLabelConstant
	if len(positional) > 0 {
		source = positional[0]
	}
	if len(positional) > 1 {
		destination = positional[len(positional)-1]
	}
	return source, destination
}

func (formatter CommandMessageFormatter) resolveRevisionReference(arguments []string) string {
	if len(arguments) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return formatter.ensureValue(arguments[len(arguments)-1])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
