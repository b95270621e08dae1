package openclaw

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/clawsetup/internal/execshell"
)

const (
	versionFlagConstant                     = "--version"
	configSubcommandConstant                = "config"
	getSubcommandConstant                   = "get"
	setSubcommandConstant                   = "set"
	securitySubcommandConstant              = "security"
	auditSubcommandConstant                 = "audit"
	jsonFlagConstant                        = "--json"
	deepFlagConstant                        = "--deep"
	fixFlagConstant                         = "--fix"
	pathFieldNameConstant                   = "path"
	emptyValueMessageConstant               = "is empty"
	emptyVersionMessageConstant             = "openclaw printed no version"
	executorNotConfiguredMessageConstant    = "openclaw executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s %s"
	outputSeparatorConstant                 = " "
	versionOperationNameConstant            = OperationName("Version")
	getConfigValueOperationNameConstant     = OperationName("GetConfigValue")
	setConfigValueOperationNameConstant     = OperationName("SetConfigValue")
	securityAuditOperationNameConstant      = OperationName("SecurityAudit")
	securityFixOperationNameConstant        = OperationName("SecurityFix")
)

// OperationName describes a named openclaw workflow supported by the client.
type OperationName string

// CommandExecutor is the minimal interface required from execshell.ShellExecutor.
type CommandExecutor interface {
	ExecuteOpenClaw(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates openclaw invocations through execshell.
type Client struct {
	executor CommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	errEmptyVersion          = errors.New(emptyVersionMessageConstant)
)

// InvalidInputError surfaces validation issues detected before any process is spawned.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps failures to run openclaw at all.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// CommandOutputError carries the human-readable output of an openclaw run that exited non-zero.
type CommandOutputError struct {
	Operation OperationName
	ExitCode  int
	Message   string
}

// Error returns the captured output message.
func (outputError CommandOutputError) Error() string {
	return outputError.Message
}

// NewClient constructs an openclaw client.
func NewClient(executor CommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// Version returns the trimmed output of openclaw --version.
func (client *Client) Version(executionContext context.Context) (string, error) {
	executionResult, executionError := client.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{
		Arguments: []string{versionFlagConstant},
	})
	if executionError != nil {
		return "", OperationError{Operation: versionOperationNameConstant, Cause: executionError}
	}

	version := strings.TrimSpace(executionResult.StandardOutput)
	if len(version) == 0 {
		return "", OperationError{Operation: versionOperationNameConstant, Cause: errEmptyVersion}
	}
	return version, nil
}

// GetConfigValue reads a single configuration value with openclaw config get.
func (client *Client) GetConfigValue(executionContext context.Context, path string) (string, error) {
	configurationPath, validationError := requirePath(path)
	if validationError != nil {
		return "", validationError
	}

	executionResult, executionError := execshell.CapturedResult(client.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{
		Arguments: []string{configSubcommandConstant, getSubcommandConstant, configurationPath},
	}))
	if executionError != nil {
		return "", OperationError{Operation: getConfigValueOperationNameConstant, Cause: executionError}
	}

	if executionResult.ExitCode != 0 {
		message := strings.TrimSpace(executionResult.StandardError)
		if len(message) == 0 {
			message = strings.TrimSpace(executionResult.StandardOutput)
		}
		return "", CommandOutputError{Operation: getConfigValueOperationNameConstant, ExitCode: executionResult.ExitCode, Message: message}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// SetConfigValue writes a single configuration value with openclaw config set. The value
// travels as one argument and is never interpreted by a shell.
func (client *Client) SetConfigValue(executionContext context.Context, path string, value string) error {
	configurationPath, validationError := requirePath(path)
	if validationError != nil {
		return validationError
	}

	executionResult, executionError := execshell.CapturedResult(client.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{
		Arguments: []string{configSubcommandConstant, setSubcommandConstant, configurationPath, value},
	}))
	if executionError != nil {
		return OperationError{Operation: setConfigValueOperationNameConstant, Cause: executionError}
	}

	if executionResult.ExitCode != 0 {
		message := joinOutput(executionResult.StandardError, executionResult.StandardOutput)
		return CommandOutputError{Operation: setConfigValueOperationNameConstant, ExitCode: executionResult.ExitCode, Message: message}
	}

	return nil
}

// SecurityAudit runs openclaw security audit --json and returns the captured output even
// when the audit exits non-zero.
func (client *Client) SecurityAudit(executionContext context.Context, deep bool) (execshell.ExecutionResult, error) {
	arguments := []string{securitySubcommandConstant, auditSubcommandConstant, jsonFlagConstant}
	if deep {
		arguments = append(arguments, deepFlagConstant)
	}

	executionResult, executionError := execshell.CapturedResult(client.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{Arguments: arguments}))
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: securityAuditOperationNameConstant, Cause: executionError}
	}
	return executionResult, nil
}

// SecurityFix runs openclaw security audit --fix and returns the captured output.
func (client *Client) SecurityFix(executionContext context.Context) (execshell.ExecutionResult, error) {
	executionResult, executionError := execshell.CapturedResult(client.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{
		Arguments: []string{securitySubcommandConstant, auditSubcommandConstant, fixFlagConstant},
	}))
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: securityFixOperationNameConstant, Cause: executionError}
	}
	return executionResult, nil
}

func requirePath(path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return "", InvalidInputError{FieldName: pathFieldNameConstant, Message: emptyValueMessageConstant}
	}
	return trimmedPath, nil
}

// joinOutput joins the non-empty trimmed parts with a single space.
func joinOutput(parts ...string) string {
	trimmedParts := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmedPart := strings.TrimSpace(part); len(trimmedPart) > 0 {
			trimmedParts = append(trimmedParts, trimmedPart)
		}
	}
	return strings.Join(trimmedParts, outputSeparatorConstant)
}
