package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "text",
			choices:        []string{"text", "json", "yaml"},
			description:    "Audit output format.",
			expectedOutput: "`<TEXT|json|yaml>` Audit output format.",
		},
		{
			name:           "default_last_choice",
			defaultChoice:  "yaml",
			choices:        []string{"text", "json", "yaml"},
			description:    "Audit output format.",
			expectedOutput: "`<text|json|YAML>` Audit output format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "json",
			choices:        []string{"text", "json"},
			expectedOutput: "`<text|JSON>`",
		},
		{
			name:           "duplicates_and_whitespace_ignored",
			defaultChoice:  "text",
			choices:        []string{" text ", "TEXT", "json", ""},
			description:    "Pick one.",
			expectedOutput: "`<TEXT|json>` Pick one.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(testInstance, testCase.expectedOutput, actual)
		})
	}
}

func TestAddChoiceFlag(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "default_applies", arguments: nil, expectedValue: "text"},
		{name: "case_insensitive", arguments: []string{"--output", "JSON"}, expectedValue: "json"},
		{name: "rejects_unknown", arguments: []string{"--output", "xml"}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			flagSet := pflag.NewFlagSet(testCase.name, pflag.ContinueOnError)
			var selected string
			AddChoiceFlag(flagSet, &selected, "output", "text", []string{"text", "json", "yaml"}, "Audit output format.")

			parseError := flagSet.Parse(testCase.arguments)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.Contains(testInstance, parseError.Error(), "expected one of text|json|yaml")
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValue, selected)
		})
	}
}
