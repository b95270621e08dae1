package server

import "strings"

const (
	addressConfigurationKeyConstant = "address"
	defaultAddressConstant          = "127.0.0.1:7421"
)

// CommandConfiguration captures persistent settings for the serve command.
type CommandConfiguration struct {
	Address string `mapstructure:"address"`
}

// DefaultCommandConfiguration binds the API to the loopback interface.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Address: defaultAddressConstant}
}

// DefaultConfigurationValues exposes the defaults keyed for viper under the provided prefix.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + "." + addressConfigurationKeyConstant: defaultAddressConstant,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Address = strings.TrimSpace(configuration.Address)
	if len(sanitized.Address) == 0 {
		sanitized.Address = defaultAddressConstant
	}
	return sanitized
}
