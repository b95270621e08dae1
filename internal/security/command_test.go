package security_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/execshell"
	"github.com/temirov/clawsetup/internal/security"
)

type stubPrompter struct {
	response bool
	prompts  []string
}

func (prompter *stubPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.response, nil
}

func executeSecurityCommand(testInstance *testing.T, builder *security.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output := &strings.Builder{}
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	command.SetOut(output)
	command.SetErr(output)
	executionError := command.Execute()
	return output.String(), executionError
}

func TestSecurityAuditCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		configuration  security.CommandConfiguration
		expectedDeep   bool
		expectedPrefix string
	}{
		{name: "text_default", arguments: []string{"audit"}, expectedPrefix: "Score: 73 (Review recommended)"},
		{name: "deep_json_flag", arguments: []string{"audit", "--deep", "--output", "json"}, expectedDeep: true, expectedPrefix: "{"},
		{name: "configured_yaml", arguments: []string{"audit"}, configuration: security.CommandConfiguration{Output: "YAML"}, expectedPrefix: "score: 73"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			client := &stubAuditClient{auditResults: []execshell.ExecutionResult{{StandardOutput: testAuditWithFindingsConstant, ExitCode: 1}}}
			store := security.NewResultStore()
			builder := &security.CommandBuilder{
				LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
				ConfigurationProvider: func() security.CommandConfiguration { return testCase.configuration },
				Client:                client,
				Store:                 store,
			}

			output, executionError := executeSecurityCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.True(testInstance, strings.HasPrefix(output, testCase.expectedPrefix), output)
			require.Equal(testInstance, []bool{testCase.expectedDeep}, client.auditDeepArgs)

			_, found := store.Load()
			require.True(testInstance, found)
		})
	}
}

func TestSecurityAuditCommandSurfacesParseError(testInstance *testing.T) {
	client := &stubAuditClient{auditResults: []execshell.ExecutionResult{{StandardOutput: "not json"}}}
	builder := &security.CommandBuilder{Client: client}

	_, executionError := executeSecurityCommand(testInstance, builder, "audit")
	require.EqualError(testInstance, executionError, "Could not parse audit JSON. stdout: not json stderr: ")
}

func TestSecurityAuditCommandRejectsConfiguredFormatBeforeAuditing(testInstance *testing.T) {
	client := &stubAuditClient{auditResults: []execshell.ExecutionResult{{StandardOutput: testAuditWithFindingsConstant, ExitCode: 1}}}
	store := security.NewResultStore()
	builder := &security.CommandBuilder{
		ConfigurationProvider: func() security.CommandConfiguration { return security.CommandConfiguration{Output: "xml"} },
		Client:                client,
		Store:                 store,
	}

	output, executionError := executeSecurityCommand(testInstance, builder, "audit")
	require.EqualError(testInstance, executionError, "unsupported output format: xml")
	require.Empty(testInstance, client.auditDeepArgs)
	require.NotContains(testInstance, output, "Score:")

	_, found := store.Load()
	require.False(testInstance, found)
}

func TestSecurityFixCommand(testInstance *testing.T) {
	testInstance.Run("declined_prompt_skips_fix", func(testInstance *testing.T) {
		client := &stubAuditClient{}
		prompter := &stubPrompter{response: false}
		builder := &security.CommandBuilder{Client: client, Prompter: prompter}

		output, executionError := executeSecurityCommand(testInstance, builder, "fix")
		require.NoError(testInstance, executionError)
		require.Equal(testInstance, 0, client.fixCalls)
		require.Len(testInstance, prompter.prompts, 1)
		require.Contains(testInstance, output, "Security fix skipped.")
	})

	testInstance.Run("assume_yes_skips_prompt", func(testInstance *testing.T) {
		client := &stubAuditClient{fixResult: execshell.ExecutionResult{StandardOutput: "Applied 1 fix"}}
		prompter := &stubPrompter{response: false}
		builder := &security.CommandBuilder{Client: client, Prompter: prompter}

		output, executionError := executeSecurityCommand(testInstance, builder, "fix", "--yes")
		require.NoError(testInstance, executionError)
		require.Equal(testInstance, 1, client.fixCalls)
		require.Empty(testInstance, prompter.prompts)
		require.Equal(testInstance, "Applied 1 fix\n", output)
	})

	testInstance.Run("failure_returns_error", func(testInstance *testing.T) {
		client := &stubAuditClient{fixResult: execshell.ExecutionResult{StandardError: "denied", ExitCode: 1}}
		builder := &security.CommandBuilder{Client: client, Prompter: &stubPrompter{response: true}}

		_, executionError := executeSecurityCommand(testInstance, builder, "fix")
		require.EqualError(testInstance, executionError, "security fix failed: denied")
	})
}
