package security

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/openclaw"
	"github.com/temirov/clawsetup/internal/ui"
	"github.com/temirov/clawsetup/internal/utils/flags"
)

const (
	commandNameConstant                = "security"
	commandShortDescriptionConstant    = "Audit and harden the openclaw installation"
	commandLongDescriptionConstant     = "security runs openclaw security audits, scores the findings, and applies automatic fixes."
	auditCommandNameConstant           = "audit"
	auditCommandShortDescription       = "Run openclaw security audit and print a scored summary"
	fixCommandNameConstant             = "fix"
	fixCommandShortDescription         = "Run openclaw security audit --fix"
	deepFlagNameConstant               = "deep"
	deepFlagDescriptionConstant        = "Request the slower, more exhaustive audit"
	outputFlagNameConstant             = "output"
	outputFlagDescriptionConstant      = "Output format for the audit result."
	fixPromptConstant                  = "Apply automatic openclaw security fixes? [y/N]: "
	fixDeclinedMessageConstant         = "Security fix skipped."
	fixFailedErrorTemplateConstant     = "security fix failed: %s"
	fixDeclinedMessageTemplateConstant = "%s\n"
)

// CommandBuilder assembles the security cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider           dependencies.LoggerProvider
	ExecutorSettingsProvider func() dependencies.ExecutorSettings
	ConfigurationProvider    func() CommandConfiguration
	Executor                 openclaw.CommandExecutor
	Client                   AuditClient
	Store                    *ResultStore
	Prompter                 ui.ConfirmationPrompter
}

// Build constructs the security command with audit and fix subcommands.
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

	configuration := builder.resolveConfiguration()

	auditCommand := &cobra.Command{
		Use:   auditCommandNameConstant,
		Short: auditCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runAudit,
	}
	auditCommand.Flags().Bool(deepFlagNameConstant, false, deepFlagDescriptionConstant)
	var outputFormat string
	flags.AddChoiceFlag(auditCommand.Flags(), &outputFormat, outputFlagNameConstant, configuration.Output, OutputFormats(), outputFlagDescriptionConstant)

	fixCommand := &cobra.Command{
		Use:   fixCommandNameConstant,
		Short: fixCommandShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runFix,
	}
	flags.BindExecutionFlags(fixCommand, flags.ExecutionDefaults{}, flags.DefaultExecutionFlagDefinitions())

	command.AddCommand(auditCommand, fixCommand)
	return command, nil
}

func (builder *CommandBuilder) runAudit(command *cobra.Command, arguments []string) error {
	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	deep, _ := command.Flags().GetBool(deepFlagNameConstant)
	outputFormat := builder.resolveConfiguration().Output
	if outputFlag := command.Flags().Lookup(outputFlagNameConstant); outputFlag != nil && outputFlag.Changed {
		outputFormat = outputFlag.Value.String()
	}
	if formatError := ValidateOutputFormat(outputFormat); formatError != nil {
		return formatError
	}

	result, auditError := service.RunAudit(command.Context(), deep)
	if auditError != nil {
		return auditError
	}
	return RenderAuditResult(command.OutOrStdout(), result, outputFormat)
}

func (builder *CommandBuilder) runFix(command *cobra.Command, arguments []string) error {
	service, serviceError := builder.resolveService()
	if serviceError != nil {
		return serviceError
	}

	prompter := builder.resolvePrompter(command)
	confirmed, confirmError := prompter.Confirm(fixPromptConstant)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		_, writeError := fmt.Fprintf(command.OutOrStdout(), fixDeclinedMessageTemplateConstant, fixDeclinedMessageConstant)
		return writeError
	}

	outcome := service.RunFix(command.Context())
	if !outcome.Success {
		return fmt.Errorf(fixFailedErrorTemplateConstant, outcome.Message)
	}
	return RenderFixOutcome(command.OutOrStdout(), outcome)
}

func (builder *CommandBuilder) resolveService() (*Service, error) {
	logger := dependencies.ResolveLogger(builder.LoggerProvider)

	client := builder.Client
	if client == nil {
		openClawClient, clientError := dependencies.ResolveOpenClawClient(builder.Executor, logger, builder.resolveExecutorSettings())
		if clientError != nil {
			return nil, clientError
		}
		client = openClawClient
	}

	store := builder.Store
	if store == nil {
		store = NewResultStore()
	}

	return NewService(client, store, logger)
}

func (builder *CommandBuilder) resolveExecutorSettings() dependencies.ExecutorSettings {
	if builder.ExecutorSettingsProvider == nil {
		return dependencies.ExecutorSettings{}
	}
	return builder.ExecutorSettingsProvider()
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
