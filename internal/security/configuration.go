package security

import "strings"

const (
	outputConfigurationKeyConstant    = "output"
	assumeYesConfigurationKeyConstant = "assume_yes"
)

// CommandConfiguration captures persistent settings for the security commands.
type CommandConfiguration struct {
	Output    string `mapstructure:"output"`
	AssumeYes bool   `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the security commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Output:    OutputFormatText,
		AssumeYes: false,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for viper under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + "." + outputConfigurationKeyConstant:    defaults.Output,
		configurationKeyPrefix + "." + assumeYesConfigurationKeyConstant: defaults.AssumeYes,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = OutputFormatText
	}
	return sanitized
}
