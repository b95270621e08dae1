package execshell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	commandNodeStringConstant               = "node"
	commandNpmStringConstant                = "npm"
	commandNpxStringConstant                = "npx"
	commandOpenClawStringConstant           = "openclaw"
	commandWingetStringConstant             = "winget"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	commandRunnerNotConfiguredMessageConst  = "command runner not configured"
	commandFailedErrorTemplateConstant      = "%s exited with code %d"
	commandFailedWithOutputTemplateConstant = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant   = "%s could not be started: %v"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "stderr"
	logFieldTimeoutConstant                 = "timeout"
)

// CommandName identifies an executable supported by the executor.
type CommandName string

// Supported command names.
const (
	CommandNode     CommandName = CommandName(commandNodeStringConstant)
	CommandNpm      CommandName = CommandName(commandNpmStringConstant)
	CommandNpx      CommandName = CommandName(commandNpxStringConstant)
	CommandOpenClaw CommandName = CommandName(commandOpenClawStringConstant)
	CommandWinget   CommandName = CommandName(commandWingetStringConstant)
)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a command name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs shell commands. A non-zero exit status is reported through
// ExecutionResult.ExitCode; the error is reserved for processes that never ran.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConst)
)

// CommandFailedError reports a process that ran but exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	standardError := trimmedOutput(failedError.Result.StandardError)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithOutputTemplateConstant, failedError.Command.Name, failedError.Result.ExitCode, standardError)
}

// CommandExecutionError reports a process that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure including the operating system error text.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, executionError.Command.Name, executionError.Cause)
}

// Unwrap exposes the underlying operating system error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver routes lifecycle events to the provided observer.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithTimeout bounds every command by the provided duration. Zero or negative disables the bound.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.timeout = timeout
	}
}

// ShellExecutor runs commands through a CommandRunner with structured logging.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
	timeout   time.Duration
}

// NewShellExecutor constructs a ShellExecutor from its collaborators.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the provided command and classifies its outcome.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if executor.timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, executor.timeout)
		defer cancel()
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
	}
	if len(command.Details.WorkingDirectory) > 0 {
		commandFields = append(commandFields, zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory))
	}
	if executor.timeout > 0 {
		commandFields = append(commandFields, zap.Duration(logFieldTimeoutConstant, executor.timeout))
	}

	executor.observer.CommandStarted(command)
	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError), append(commandFields, zap.Error(runError))...)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, executionResult),
			append(commandFields,
				zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
				zap.String(logFieldStandardErrorConstant, trimmedOutput(executionResult.StandardError)),
			)...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(executor.formatter.BuildSuccessMessage(command), commandFields...)
	return executionResult, nil
}

// ExecuteOpenClaw runs the openclaw CLI with the provided details.
func (executor *ShellExecutor) ExecuteOpenClaw(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandOpenClaw, Details: details})
}

// ExecuteNpm runs npm with the provided details.
func (executor *ShellExecutor) ExecuteNpm(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandNpm, Details: details})
}

// ExecuteNode runs node with the provided details.
func (executor *ShellExecutor) ExecuteNode(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandNode, Details: details})
}

// ExecuteWinget runs winget with the provided details.
func (executor *ShellExecutor) ExecuteWinget(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandWinget, Details: details})
}

// CapturedResult returns the output of a command that either succeeded or ran with a
// non-zero exit status. Only failures to start the process are returned as errors.
func CapturedResult(executionResult ExecutionResult, executionError error) (ExecutionResult, error) {
	if executionError == nil {
		return executionResult, nil
	}
	var failedError CommandFailedError
	if errors.As(executionError, &failedError) {
		return failedError.Result, nil
	}
	return ExecutionResult{}, executionError
}
