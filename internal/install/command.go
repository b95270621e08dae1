package install

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/ui"
	"github.com/temirov/clawsetup/internal/utils/flags"
)

const (
	commandNameConstant             = "install"
	commandShortDescriptionConstant = "Check and install openclaw prerequisites"
	commandLongDescriptionConstant  = "install checks for Node.js and the openclaw CLI, installs them, and verifies the npm global bin directory is on PATH."
	checkCommandNameConstant        = "check"
	checkCommandShortDescription    = "Report Node.js and openclaw availability"
	nodeCommandNameConstant         = "node"
	nodeCommandShortDescription     = "Install Node.js LTS with winget"
	cliCommandNameConstant          = "cli"
	cliCommandShortDescription      = "Install openclaw@latest globally with npm"
	pathCommandNameConstant         = "path"
	pathCommandShortDescription     = "Check that the npm global bin directory is on PATH"
	nodePromptConstant              = "Install Node.js LTS with winget? [y/N]: "
	cliPromptConstant               = "Install openclaw@latest globally with npm? [y/N]: "
	declinedMessageConstant         = "Installation skipped."
	outputLineTemplateConstant      = "%s\n"
)

// CommandBuilder assembles the install cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider           dependencies.LoggerProvider
	ExecutorSettingsProvider func() dependencies.ExecutorSettings
	ConfigurationProvider    func() CommandConfiguration
	Executor                 CommandExecutor
	Prompter                 ui.ConfirmationPrompter
	ServiceOptions           []ServiceOption
}

// Build constructs the install command and its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.DefaultExecutionFlagDefinitions())

	command.AddCommand(
		&cobra.Command{Use: checkCommandNameConstant, Short: checkCommandShortDescription, Args: cobra.NoArgs, RunE: builder.runCheck},
		&cobra.Command{Use: nodeCommandNameConstant, Short: nodeCommandShortDescription, Args: cobra.NoArgs, RunE: builder.runInstallNode},
		&cobra.Command{Use: cliCommandNameConstant, Short: cliCommandShortDescription, Args: cobra.NoArgs, RunE: builder.runInstallCLI},
		&cobra.Command{Use: pathCommandNameConstant, Short: pathCommandShortDescription, Args: cobra.NoArgs, RunE: builder.runEnsurePath},
	)
	return command, nil
}

func (builder *CommandBuilder) runCheck(command *cobra.Command, arguments []string) error {
	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	nodeResult := service.CheckNode(command.Context())
	if writeError := writeLine(command.OutOrStdout(), nodeResult.Message); writeError != nil {
		return writeError
	}
	cliResult := service.CheckCLI(command.Context())
	return writeLine(command.OutOrStdout(), cliResult.Message)
}

func (builder *CommandBuilder) runInstallNode(command *cobra.Command, arguments []string) error {
	return builder.runConfirmedInstall(command, nodePromptConstant, func(service *Service) (string, error) {
		return service.InstallNode(command.Context())
	})
}

func (builder *CommandBuilder) runInstallCLI(command *cobra.Command, arguments []string) error {
	return builder.runConfirmedInstall(command, cliPromptConstant, func(service *Service) (string, error) {
		return service.InstallCLI(command.Context())
	})
}

func (builder *CommandBuilder) runEnsurePath(command *cobra.Command, arguments []string) error {
	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}
	message, pathError := service.EnsurePath(command.Context())
	if pathError != nil {
		return pathError
	}
	return writeLine(command.OutOrStdout(), message)
}

func (builder *CommandBuilder) runConfirmedInstall(command *cobra.Command, prompt string, install func(service *Service) (string, error)) error {
	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	confirmed, confirmError := builder.resolvePrompter(command).Confirm(prompt)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		return writeLine(command.OutOrStdout(), declinedMessageConstant)
	}

	message, installError := install(service)
	if installError != nil {
		return installError
	}
	return writeLine(command.OutOrStdout(), message)
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	executor := builder.Executor
	if executor == nil {
		logger := dependencies.ResolveLogger(builder.LoggerProvider)
		settings := dependencies.ExecutorSettings{}
		if builder.ExecutorSettingsProvider != nil {
			settings = builder.ExecutorSettingsProvider()
		}
		shellExecutor, executorError := dependencies.ResolveShellExecutor(logger, settings)
		if executorError != nil {
			return nil, executorError
		}
		executor = shellExecutor
	}

	options := append([]ServiceOption{WithMinimumNodeMajor(builder.resolveConfiguration().MinimumNodeMajor)}, builder.ServiceOptions...)
	return NewService(executor, options...)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) ui.ConfirmationPrompter {
	if flags.AssumeYes(command, builder.resolveConfiguration().AssumeYes) {
		return ui.AssumeYesPrompter{}
	}
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func writeLine(writer io.Writer, message string) error {
	_, writeError := fmt.Fprintf(writer, outputLineTemplateConstant, message)
	return writeError
}
