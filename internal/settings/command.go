package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/openclaw"
)

const (
	commandNameConstant             = "config"
	commandShortDescriptionConstant = "Inspect and edit the openclaw configuration"
	commandLongDescriptionConstant  = "config resolves the openclaw configuration file and reads or writes individual values with openclaw config get|set."
	pathCommandNameConstant         = "path"
	pathCommandShortDescription     = "Print the resolved openclaw.json location"
	getCommandUseConstant           = "get <path>"
	getCommandShortDescription      = "Print a configuration value"
	setCommandUseConstant           = "set <path> <value>"
	setCommandShortDescription      = "Write a configuration value"
	updatedMessageTemplateConstant  = "Updated %s\n"
	outputLineTemplateConstant      = "%s\n"
)

// ValueClient reads and writes individual openclaw configuration values.
type ValueClient interface {
	GetConfigValue(executionContext context.Context, path string) (string, error)
	SetConfigValue(executionContext context.Context, path string, value string) error
}

// CommandBuilder assembles the config cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider           dependencies.LoggerProvider
	ExecutorSettingsProvider func() dependencies.ExecutorSettings
	Executor                 openclaw.CommandExecutor
	Client                   ValueClient
	Resolver                 *PathResolver
}

// Build constructs the config command and its subcommands.
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

	command.AddCommand(
		&cobra.Command{Use: pathCommandNameConstant, Short: pathCommandShortDescription, Args: cobra.NoArgs, RunE: builder.runPath},
		&cobra.Command{Use: getCommandUseConstant, Short: getCommandShortDescription, Args: cobra.ExactArgs(1), RunE: builder.runGet},
		&cobra.Command{Use: setCommandUseConstant, Short: setCommandShortDescription, Args: cobra.ExactArgs(2), RunE: builder.runSet},
	)
	return command, nil
}

func (builder *CommandBuilder) runPath(command *cobra.Command, arguments []string) error {
	configPath, resolveError := builder.resolveResolver().ResolveConfigPath()
	if resolveError != nil {
		return resolveError
	}
	return writeLine(command.OutOrStdout(), outputLineTemplateConstant, configPath)
}

func (builder *CommandBuilder) runGet(command *cobra.Command, arguments []string) error {
	client, clientError := builder.resolveClient()
	if clientError != nil {
		return clientError
	}
	value, getError := client.GetConfigValue(command.Context(), arguments[0])
	if getError != nil {
		return getError
	}
	return writeLine(command.OutOrStdout(), outputLineTemplateConstant, value)
}

func (builder *CommandBuilder) runSet(command *cobra.Command, arguments []string) error {
	client, clientError := builder.resolveClient()
	if clientError != nil {
		return clientError
	}
	if setError := client.SetConfigValue(command.Context(), arguments[0], arguments[1]); setError != nil {
		return setError
	}
	return writeLine(command.OutOrStdout(), updatedMessageTemplateConstant, arguments[0])
}

func (builder *CommandBuilder) resolveClient() (ValueClient, error) {
	if builder.Client != nil {
		return builder.Client, nil
	}
	settings := dependencies.ExecutorSettings{}
	if builder.ExecutorSettingsProvider != nil {
		settings = builder.ExecutorSettingsProvider()
	}
	client, clientError := dependencies.ResolveOpenClawClient(builder.Executor, dependencies.ResolveLogger(builder.LoggerProvider), settings)
	if clientError != nil {
		return nil, clientError
	}
	return client, nil
}

func (builder *CommandBuilder) resolveResolver() *PathResolver {
	if builder.Resolver != nil {
		return builder.Resolver
	}
	return NewPathResolver()
}

func writeLine(writer io.Writer, template string, value string) error {
	_, writeError := fmt.Fprintf(writer, template, value)
	return writeError
}
