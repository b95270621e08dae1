// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	AssumeYes bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	AssumeYes ExecutionFlagDefinition
}

// DefaultExecutionFlagDefinitions enables the standard assume-yes flag.
func DefaultExecutionFlagDefinitions() ExecutionFlagDefinitions {
	return ExecutionFlagDefinitions{
		AssumeYes: ExecutionFlagDefinition{
			Name:      AssumeYesFlagName,
			Usage:     AssumeYesFlagUsage,
			Shorthand: AssumeYesFlagShorthand,
			Enabled:   true,
		},
	}
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	bindBoolFlag(command.PersistentFlags(), definitions.AssumeYes, defaults.AssumeYes)
}

// AssumeYes reports whether the assume-yes flag was set on the command or its parents,
// falling back to the configured default.
func AssumeYes(command *cobra.Command, configuredDefault bool) bool {
	if command == nil {
		return configuredDefault
	}
	flag := command.Flags().Lookup(AssumeYesFlagName)
	if flag == nil {
		flag = command.InheritedFlags().Lookup(AssumeYesFlagName)
	}
	if flag == nil || !flag.Changed {
		return configuredDefault
	}
	return flag.Value.String() == "true"
}

func bindBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Bool(definition.Name, defaultValue, definition.Usage)
}
