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
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	openClawSecuritySubcommandConstant = "security"
	openClawAuditSubcommandConstant    = "audit"
	openClawConfigSubcommandConstant   = "config"
	openClawGetSubcommandConstant      = "get"
	openClawSetSubcommandConstant      = "set"
	openClawVersionFlagConstant        = "--version"
	openClawDeepFlagConstant           = "--deep"
	openClawFixFlagConstant            = "--fix"
	npmInstallSubcommandConstant       = "install"
	npmConfigSubcommandConstant        = "config"
	wingetInstallSubcommandConstant    = "install"
	nodeVersionFlagConstant            = "-v"
	deepAuditLabelConstant             = "deep security audit"
	standardAuditLabelConstant         = "security audit"
)

const (
	openClawAuditStartTemplateConstant            = "Running openclaw %s"
	openClawAuditSuccessTemplateConstant          = "Completed openclaw %s"
	openClawAuditFailureTemplateConstant          = "openclaw %s exited with code %d%s"
	openClawAuditExecutionFailureTemplateConstant = "Unable to run openclaw %s: %s"
	openClawFixStartTemplateConstant              = "Applying openclaw security fixes"
	openClawFixSuccessTemplateConstant            = "Applied openclaw security fixes"
	openClawFixFailureTemplateConstant            = "Failed to apply openclaw security fixes (exit code %d%s)"
	openClawFixExecutionFailureTemplateConstant   = "Unable to apply openclaw security fixes: %s"
	openClawConfigGetStartTemplateConstant        = "Reading openclaw configuration value %s"
	openClawConfigGetSuccessTemplateConstant      = "Read openclaw configuration value %s"
	openClawConfigGetFailureTemplateConstant      = "Failed to read openclaw configuration value %s (exit code %d%s)"
	openClawConfigGetExecutionTemplateConstant    = "Unable to read openclaw configuration value %s: %s"
	openClawConfigSetStartTemplateConstant        = "Updating openclaw configuration value %s"
	openClawConfigSetSuccessTemplateConstant      = "Updated openclaw configuration value %s"
	openClawConfigSetFailureTemplateConstant      = "Failed to update openclaw configuration value %s (exit code %d%s)"
	openClawConfigSetExecutionTemplateConstant    = "Unable to update openclaw configuration value %s: %s"
	openClawVersionStartTemplateConstant          = "Checking openclaw version"
	openClawVersionSuccessTemplateConstant        = "Resolved openclaw version"
	openClawVersionFailureTemplateConstant        = "Failed to check openclaw version (exit code %d%s)"
	openClawVersionExecutionTemplateConstant      = "openclaw is not available: %s"
	npmInstallStartTemplateConstant               = "Installing %s with npm"
	npmInstallSuccessTemplateConstant             = "Installed %s with npm"
	npmInstallFailureTemplateConstant             = "Failed to install %s with npm (exit code %d%s)"
	npmInstallExecutionTemplateConstant           = "Unable to run npm to install %s: %s"
	npmConfigStartTemplateConstant                = "Reading npm configuration value %s"
	npmConfigSuccessTemplateConstant              = "Read npm configuration value %s"
	npmConfigFailureTemplateConstant              = "Failed to read npm configuration value %s (exit code %d%s)"
	npmConfigExecutionTemplateConstant            = "Unable to run npm to read %s: %s"
	wingetInstallStartTemplateConstant            = "Installing %s with winget"
	wingetInstallSuccessTemplateConstant          = "Installed %s with winget"
	wingetInstallFailureTemplateConstant          = "Failed to install %s with winget (exit code %d%s)"
	wingetInstallExecutionTemplateConstant        = "Unable to run winget to install %s: %s"
	nodeVersionStartTemplateConstant              = "Checking Node.js version"
	nodeVersionSuccessTemplateConstant            = "Resolved Node.js version"
	nodeVersionFailureTemplateConstant            = "Failed to check Node.js version (exit code %d%s)"
	nodeVersionExecutionTemplateConstant          = "Node.js is not available: %s"
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

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandOpenClaw:
		return formatter.describeOpenClawMessage(command, result, failure, stage)
	case CommandNpm:
		return formatter.describeNpmMessage(command, result, failure, stage)
	case CommandWinget:
		return formatter.describeWingetMessage(command, result, failure, stage)
	case CommandNode:
		return formatter.describeNodeMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeOpenClawMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch {
	case containsArgument(arguments, openClawVersionFlagConstant):
		return formatter.selectMessage(stage,
			openClawVersionStartTemplateConstant,
			openClawVersionSuccessTemplateConstant,
			fmt.Sprintf(openClawVersionFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(openClawVersionExecutionTemplateConstant, formatter.describeFailure(failure)),
		)
	case formatter.argumentAtIndex(arguments, 0) == openClawSecuritySubcommandConstant && formatter.argumentAtIndex(arguments, 1) == openClawAuditSubcommandConstant:
		if containsArgument(arguments, openClawFixFlagConstant) {
			return formatter.selectMessage(stage,
				openClawFixStartTemplateConstant,
				openClawFixSuccessTemplateConstant,
				fmt.Sprintf(openClawFixFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
				fmt.Sprintf(openClawFixExecutionFailureTemplateConstant, formatter.describeFailure(failure)),
			)
		}
		auditLabel := standardAuditLabelConstant
		if containsArgument(arguments, openClawDeepFlagConstant) {
			auditLabel = deepAuditLabelConstant
		}
		return formatter.selectMessage(stage,
			fmt.Sprintf(openClawAuditStartTemplateConstant, auditLabel),
			fmt.Sprintf(openClawAuditSuccessTemplateConstant, auditLabel),
			fmt.Sprintf(openClawAuditFailureTemplateConstant, auditLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(openClawAuditExecutionFailureTemplateConstant, auditLabel, formatter.describeFailure(failure)),
		)
	case formatter.argumentAtIndex(arguments, 0) == openClawConfigSubcommandConstant:
		configurationPath := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		switch formatter.argumentAtIndex(arguments, 1) {
		case openClawGetSubcommandConstant:
			return formatter.selectMessage(stage,
				fmt.Sprintf(openClawConfigGetStartTemplateConstant, configurationPath),
				fmt.Sprintf(openClawConfigGetSuccessTemplateConstant, configurationPath),
				fmt.Sprintf(openClawConfigGetFailureTemplateConstant, configurationPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
				fmt.Sprintf(openClawConfigGetExecutionTemplateConstant, configurationPath, formatter.describeFailure(failure)),
			)
		case openClawSetSubcommandConstant:
			return formatter.selectMessage(stage,
				fmt.Sprintf(openClawConfigSetStartTemplateConstant, configurationPath),
				fmt.Sprintf(openClawConfigSetSuccessTemplateConstant, configurationPath),
				fmt.Sprintf(openClawConfigSetFailureTemplateConstant, configurationPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
				fmt.Sprintf(openClawConfigSetExecutionTemplateConstant, configurationPath, formatter.describeFailure(failure)),
			)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeNpmMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	switch formatter.argumentAtIndex(arguments, 0) {
	case npmInstallSubcommandConstant:
		packageName := formatter.ensureValue(formatter.extractLastNonFlagArgument(arguments[1:]))
		return formatter.selectMessage(stage,
			fmt.Sprintf(npmInstallStartTemplateConstant, packageName),
			fmt.Sprintf(npmInstallSuccessTemplateConstant, packageName),
			fmt.Sprintf(npmInstallFailureTemplateConstant, packageName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(npmInstallExecutionTemplateConstant, packageName, formatter.describeFailure(failure)),
		)
	case npmConfigSubcommandConstant:
		configurationKey := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		return formatter.selectMessage(stage,
			fmt.Sprintf(npmConfigStartTemplateConstant, configurationKey),
			fmt.Sprintf(npmConfigSuccessTemplateConstant, configurationKey),
			fmt.Sprintf(npmConfigFailureTemplateConstant, configurationKey, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(npmConfigExecutionTemplateConstant, configurationKey, formatter.describeFailure(failure)),
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeWingetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if formatter.argumentAtIndex(arguments, 0) != wingetInstallSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	packageIdentifier := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	return formatter.selectMessage(stage,
		fmt.Sprintf(wingetInstallStartTemplateConstant, packageIdentifier),
		fmt.Sprintf(wingetInstallSuccessTemplateConstant, packageIdentifier),
		fmt.Sprintf(wingetInstallFailureTemplateConstant, packageIdentifier, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(wingetInstallExecutionTemplateConstant, packageIdentifier, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) describeNodeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, nodeVersionFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.selectMessage(stage,
		nodeVersionStartTemplateConstant,
		nodeVersionSuccessTemplateConstant,
		fmt.Sprintf(nodeVersionFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(nodeVersionExecutionTemplateConstant, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) selectMessage(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	case messageStageExecutionFailure:
		return executionFailureMessage
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
	trimmedStandardError := trimmedOutput(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func (formatter CommandMessageFormatter) extractLastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		candidate := strings.TrimSpace(arguments[index])
		if len(candidate) == 0 || strings.HasPrefix(candidate, "-") {
			continue
		}
		return candidate
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

func trimmedOutput(output string) string {
	return strings.TrimSpace(output)
}
