package install

const (
	minimumNodeMajorConfigurationKeyConstant = "minimum_node_major"
	assumeYesConfigurationKeyConstant        = "assume_yes"
)

// CommandConfiguration captures persistent settings for the install commands.
type CommandConfiguration struct {
	MinimumNodeMajor int  `mapstructure:"minimum_node_major"`
	AssumeYes        bool `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline configuration values for the install commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MinimumNodeMajor: defaultMinimumNodeMajorConstant,
		AssumeYes:        false,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for viper under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + "." + minimumNodeMajorConfigurationKeyConstant: defaults.MinimumNodeMajor,
		configurationKeyPrefix + "." + assumeYesConfigurationKeyConstant:        defaults.AssumeYes,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.MinimumNodeMajor <= 0 {
		sanitized.MinimumNodeMajor = defaultMinimumNodeMajorConstant
	}
	return sanitized
}
