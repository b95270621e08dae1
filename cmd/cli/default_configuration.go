package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationYAML mirrors DefaultConfigurationValues and the README example.
//
//go:embed default_config.yaml
var defaultConfigurationYAML []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in configuration and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationYAML), configurationTypeConstant
}
