package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/execshell"
	"github.com/temirov/clawsetup/internal/install"
	"github.com/temirov/clawsetup/internal/security"
	"github.com/temirov/clawsetup/internal/server"
	"github.com/temirov/clawsetup/internal/settings"
	"github.com/temirov/clawsetup/internal/ui"
	"github.com/temirov/clawsetup/internal/utils"
	"github.com/temirov/clawsetup/internal/utils/flags"
)

const (
	applicationNameConstant                 = "clawsetup"
	applicationShortDescriptionConstant     = "Install, configure, and audit the openclaw CLI"
	applicationLongDescriptionConstant      = "clawsetup installs Node.js and openclaw, edits the openclaw configuration, and scores openclaw security audits."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the clawsetup version and exit."
	versionOutputTemplateConstant           = "%s version: %s\n"
	develVersionConstant                    = "(devel)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	processTimeoutConfigKeyConstant         = toolsConfigurationKeyConstant + ".process.timeout"
	installConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".install"
	securityConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".security"
	serverConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".server"
	environmentPrefixConstant               = "CLAWSETUP"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationProcessTimeoutFieldConst   = "process_timeout"
	configurationOverridesFieldConstant     = "environment_overrides"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationProcessConfiguration bounds every spawned process.
type ApplicationProcessConfiguration struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Process  ApplicationProcessConfiguration `mapstructure:"process"`
	Install  install.CommandConfiguration    `mapstructure:"install"`
	Security security.CommandConfiguration   `mapstructure:"security"`
	Server   server.CommandConfiguration     `mapstructure:"server"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	showVersion           bool
	resultStore           *security.ResultStore
	versionResolver       func(context.Context) string
	exitFunction          func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		resultStore:         security.NewResultStore(),
		versionResolver:     resolveBuildVersion,
		exitFunction:        os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if application.showVersion {
				return application.printVersion(command)
			}
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flags.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, string(utils.LogLevelInfo), utils.SupportedLogLevels(), logLevelFlagUsageConstant)
	flags.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().BoolVar(&application.showVersion, versionFlagNameConstant, false, versionFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	securityBuilder := security.CommandBuilder{
		LoggerProvider:           loggerProvider,
		ExecutorSettingsProvider: application.executorSettings,
		ConfigurationProvider: func() security.CommandConfiguration {
			return application.configuration.Tools.Security
		},
		Store: application.resultStore,
	}
	if securityCommand, securityBuildError := securityBuilder.Build(); securityBuildError == nil {
		cobraCommand.AddCommand(securityCommand)
	}

	installBuilder := install.CommandBuilder{
		LoggerProvider:           loggerProvider,
		ExecutorSettingsProvider: application.executorSettings,
		ConfigurationProvider: func() install.CommandConfiguration {
			return application.configuration.Tools.Install
		},
	}
	if installCommand, installBuildError := installBuilder.Build(); installBuildError == nil {
		cobraCommand.AddCommand(installCommand)
	}

	settingsBuilder := settings.CommandBuilder{
		LoggerProvider:           loggerProvider,
		ExecutorSettingsProvider: application.executorSettings,
	}
	if settingsCommand, settingsBuildError := settingsBuilder.Build(); settingsBuildError == nil {
		cobraCommand.AddCommand(settingsCommand)
	}

	serverBuilder := server.CommandBuilder{
		LoggerProvider:           loggerProvider,
		ExecutorSettingsProvider: application.executorSettings,
		ConfigurationProvider: func() server.CommandConfiguration {
			return application.configuration.Tools.Server
		},
		InstallServiceOptions: func() []install.ServiceOption {
			return []install.ServiceOption{install.WithMinimumNodeMajor(application.configuration.Tools.Install.MinimumNodeMajor)}
		},
		Store: application.resultStore,
	}
	if serverCommand, serverBuildError := serverBuilder.Build(); serverBuildError == nil {
		cobraCommand.AddCommand(serverCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// DefaultConfigurationValues lists every configuration key with its built-in default.
func DefaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		processTimeoutConfigKeyConstant:  time.Duration(0).String(),
	}
	for configurationKey, configurationValue := range install.DefaultConfigurationValues(installConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range security.DefaultConfigurationValues(securityConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range server.DefaultConfigurationValues(serverConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, DefaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Duration(configurationProcessTimeoutFieldConst, application.configuration.Tools.Process.Timeout),
		zap.Strings(configurationOverridesFieldConstant, application.configurationMetadata.EnvironmentOverrides),
	)

	return nil
}

func (application *Application) executorSettings() dependencies.ExecutorSettings {
	executorSettings := dependencies.ExecutorSettings{Timeout: application.configuration.Tools.Process.Timeout}
	if application.humanReadableLoggingEnabled() {
		executorSettings.Observer = application.consoleObserver()
	}
	return executorSettings
}

func (application *Application) consoleObserver() execshell.CommandEventObserver {
	return ui.NewConsoleCommandEventLogger(application.logger)
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) printVersion(command *cobra.Command) error {
	if _, writeError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(command.Context())); writeError != nil {
		return writeError
	}
	application.exitFunction(0)
	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil && len(userConfigurationDirectory) > 0 {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}

func resolveBuildVersion(context.Context) string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available || len(strings.TrimSpace(buildInformation.Main.Version)) == 0 {
		return develVersionConstant
	}
	return buildInformation.Main.Version
}
