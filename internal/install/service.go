package install

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/temirov/clawsetup/internal/execshell"
)

const (
	windowsPlatformConstant              = "windows"
	nodeVersionFlagConstant              = "-v"
	nodeVersionPrefixConstant            = "v"
	versionComponentSeparatorConstant    = "."
	defaultMinimumNodeMajorConstant      = 22
	openClawVersionFlagConstant          = "--version"
	npmInstallSubcommandConstant         = "install"
	npmGlobalFlagConstant                = "-g"
	openClawPackageConstant              = "openclaw@latest"
	npmConfigSubcommandConstant          = "config"
	npmGetSubcommandConstant             = "get"
	npmPrefixKeyConstant                 = "prefix"
	wingetInstallSubcommandConstant      = "install"
	nodePackageIdentifierConstant        = "OpenJS.NodeJS.LTS"
	wingetAcceptPackageAgreementsFlag    = "--accept-package-agreements"
	wingetAcceptSourceAgreementsFlag     = "--accept-source-agreements"
	executorNotConfiguredMessageConstant = "install executor not configured"
	nodeNotFoundTemplateConstant         = "Node not found: %v"
	nodeExitedTemplateConstant           = "node -v exited with code %d"
	nodeOKTemplateConstant               = "Node %s (OK)"
	nodeTooOldTemplateConstant           = "Node %s found but need %d+ (major: %s)"
	unknownMajorConstant                 = "unknown"
	cliNotFoundMessageConstant           = "openclaw not found in PATH"
	cliFailedMessageConstant             = "openclaw failed"
	cliFoundTemplateConstant             = "OpenClaw %s"
	nodeInstalledMessageConstant         = "Node.js installed. Restart the app and run Check again."
	wingetExitTemplateConstant           = "winget exited with code: %d"
	wingetFailedTemplateConstant         = "winget failed: %v"
	cliInstalledTemplateConstant         = "Installed. %s"
	npmErrorTemplateConstant             = "npm error: %s %s"
	npmFailedTemplateConstant            = "npm not found or failed: %v"
	npmPrefixEmptyMessageConstant        = "npm prefix empty"
	npmPrefixFailedTemplateConstant      = "npm config get prefix exited with code %d: %s"
	installNodeStepConstant              = "install-node"
	installCLIStepConstant               = "install-cli"
	npmPrefixStepConstant                = "npm-prefix"
	doubleQuoteConstant                  = `"`
)

// CommandExecutor is the subset of execshell.ShellExecutor used by the installer.
type CommandExecutor interface {
	ExecuteNode(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteNpm(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteWinget(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteOpenClaw(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

var (
	// ErrExecutorNotConfigured indicates the service was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// ServiceOption customizes a Service.
type ServiceOption func(service *Service)

// WithPlatform overrides the operating system name used for PATH handling.
func WithPlatform(platform string) ServiceOption {
	return func(service *Service) {
		if len(platform) > 0 {
			service.platform = platform
		}
	}
}

// WithEnvironmentLookup overrides how environment variables are read.
func WithEnvironmentLookup(lookup EnvironmentLookup) ServiceOption {
	return func(service *Service) {
		if lookup != nil {
			service.lookupEnvironment = lookup
		}
	}
}

// WithMinimumNodeMajor overrides the required Node.js major version. Non-positive values keep the default.
func WithMinimumNodeMajor(major int) ServiceOption {
	return func(service *Service) {
		if major > 0 {
			service.minimumNodeMajor = major
		}
	}
}

// Service runs prerequisite checks and installers through a CommandExecutor.
type Service struct {
	executor          CommandExecutor
	platform          string
	lookupEnvironment EnvironmentLookup
	minimumNodeMajor  int
}

// NewService constructs an installer service.
func NewService(executor CommandExecutor, options ...ServiceOption) (*Service, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	service := &Service{
		executor:          executor,
		platform:          runtime.GOOS,
		lookupEnvironment: defaultEnvironmentLookup,
		minimumNodeMajor:  defaultMinimumNodeMajorConstant,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// ParseNodeMajor returns the integer before the first dot of a version without its leading v.
func ParseNodeMajor(version string) (int, bool) {
	majorComponent, _, _ := strings.Cut(version, versionComponentSeparatorConstant)
	major, parseError := strconv.Atoi(majorComponent)
	if parseError != nil || major < 0 {
		return 0, false
	}
	return major, true
}

// CheckNode runs node -v and compares the major version against the configured minimum.
func (service *Service) CheckNode(executionContext context.Context) NodeCheckResult {
	executionResult, executionError := execshell.CapturedResult(service.executor.ExecuteNode(executionContext, execshell.CommandDetails{
		Arguments: []string{nodeVersionFlagConstant},
	}))
	if executionError != nil {
		return NodeCheckResult{Found: false, Message: fmt.Sprintf(nodeNotFoundTemplateConstant, invocationCause(executionError))}
	}

	version := strings.TrimPrefix(strings.TrimSpace(executionResult.StandardOutput), nodeVersionPrefixConstant)
	result := NodeCheckResult{Found: true, Version: version}

	if executionResult.ExitCode != 0 {
		result.Message = fmt.Sprintf(nodeExitedTemplateConstant, executionResult.ExitCode)
		return result
	}

	majorDescription := unknownMajorConstant
	if major, parsed := ParseNodeMajor(version); parsed {
		result.Major = &major
		result.OK = major >= service.minimumNodeMajor
		majorDescription = strconv.Itoa(major)
	}

	if result.OK {
		result.Message = fmt.Sprintf(nodeOKTemplateConstant, version)
	} else {
		result.Message = fmt.Sprintf(nodeTooOldTemplateConstant, version, service.minimumNodeMajor, majorDescription)
	}
	return result
}

// CheckCLI runs openclaw --version. The CLI counts as found only when it exits zero
// and prints a version.
func (service *Service) CheckCLI(executionContext context.Context) CLICheckResult {
	executionResult, executionError := execshell.CapturedResult(service.executor.ExecuteOpenClaw(executionContext, execshell.CommandDetails{
		Arguments: []string{openClawVersionFlagConstant},
	}))
	if executionError != nil {
		return CLICheckResult{Found: false, Message: cliNotFoundMessageConstant}
	}

	version := strings.TrimSpace(executionResult.StandardOutput)
	if executionResult.ExitCode != 0 || len(version) == 0 {
		return CLICheckResult{Found: false, Message: cliFailedMessageConstant}
	}
	return CLICheckResult{Found: true, Version: version, Message: fmt.Sprintf(cliFoundTemplateConstant, version)}
}

// InstallNode installs the Node.js LTS package with winget.
func (service *Service) InstallNode(executionContext context.Context) (string, error) {
	executionResult, executionError := execshell.CapturedResult(service.executor.ExecuteWinget(executionContext, execshell.CommandDetails{
		Arguments: []string{
			wingetInstallSubcommandConstant,
			nodePackageIdentifierConstant,
			wingetAcceptPackageAgreementsFlag,
			wingetAcceptSourceAgreementsFlag,
		},
	}))
	if executionError != nil {
		cause := invocationCause(executionError)
		return "", InstallError{Step: installNodeStepConstant, Message: fmt.Sprintf(wingetFailedTemplateConstant, cause), Cause: cause}
	}
	if executionResult.ExitCode != 0 {
		return "", InstallError{Step: installNodeStepConstant, Message: fmt.Sprintf(wingetExitTemplateConstant, executionResult.ExitCode)}
	}
	return nodeInstalledMessageConstant, nil
}

// InstallCLI installs openclaw@latest globally with npm.
func (service *Service) InstallCLI(executionContext context.Context) (string, error) {
	executionResult, executionError := execshell.CapturedResult(service.executor.ExecuteNpm(executionContext, execshell.CommandDetails{
		Arguments: []string{npmInstallSubcommandConstant, npmGlobalFlagConstant, openClawPackageConstant},
	}))
	if executionError != nil {
		cause := invocationCause(executionError)
		return "", InstallError{Step: installCLIStepConstant, Message: fmt.Sprintf(npmFailedTemplateConstant, cause), Cause: cause}
	}

	standardOutput := strings.TrimSpace(executionResult.StandardOutput)
	if executionResult.ExitCode != 0 {
		standardError := strings.TrimSpace(executionResult.StandardError)
		return "", InstallError{Step: installCLIStepConstant, Message: fmt.Sprintf(npmErrorTemplateConstant, standardError, standardOutput)}
	}
	return fmt.Sprintf(cliInstalledTemplateConstant, standardOutput), nil
}

// NpmPrefix returns the npm global prefix with surrounding whitespace and quotes removed.
func (service *Service) NpmPrefix(executionContext context.Context) (string, error) {
	executionResult, executionError := execshell.CapturedResult(service.executor.ExecuteNpm(executionContext, execshell.CommandDetails{
		Arguments: []string{npmConfigSubcommandConstant, npmGetSubcommandConstant, npmPrefixKeyConstant},
	}))
	if executionError != nil {
		cause := invocationCause(executionError)
		return "", InstallError{Step: npmPrefixStepConstant, Message: cause.Error(), Cause: cause}
	}
	if executionResult.ExitCode != 0 {
		return "", InstallError{
			Step:    npmPrefixStepConstant,
			Message: fmt.Sprintf(npmPrefixFailedTemplateConstant, executionResult.ExitCode, strings.TrimSpace(executionResult.StandardError)),
		}
	}

	prefix := strings.Trim(strings.TrimSpace(executionResult.StandardOutput), doubleQuoteConstant)
	if len(prefix) == 0 {
		return "", InstallError{Step: npmPrefixStepConstant, Message: npmPrefixEmptyMessageConstant}
	}
	return prefix, nil
}

func invocationCause(executionError error) error {
	var commandExecutionError execshell.CommandExecutionError
	if errors.As(executionError, &commandExecutionError) && commandExecutionError.Cause != nil {
		return commandExecutionError.Cause
	}
	return executionError
}
