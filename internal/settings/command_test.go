package settings_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/clawsetup/internal/execshell"
	"github.com/temirov/clawsetup/internal/settings"
)

type recordingOpenClawExecutor struct {
	standardOutput  string
	recordedDetails []execshell.CommandDetails
}

func (executor *recordingOpenClawExecutor) ExecuteOpenClaw(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func executeConfigCommand(testInstance *testing.T, builder *settings.CommandBuilder, arguments ...string) (string, error) {
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

func TestConfigPathCommand(testInstance *testing.T) {
	builder := &settings.CommandBuilder{
		Resolver: settings.NewPathResolver(
			settings.WithPlatform("linux"),
			settings.WithEnvironmentLookup(environmentFrom(map[string]string{"OPENCLAW_CONFIG_PATH": "/etc/openclaw.json"})),
		),
	}

	output, executionError := executeConfigCommand(testInstance, builder, "path")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "/etc/openclaw.json\n", output)
}

func TestConfigGetAndSetCommands(testInstance *testing.T) {
	executor := &recordingOpenClawExecutor{standardOutput: "18789\n"}
	builder := &settings.CommandBuilder{Executor: executor}

	output, getError := executeConfigCommand(testInstance, builder, "get", "gateway.port")
	require.NoError(testInstance, getError)
	require.Equal(testInstance, "18789\n", output)

	output, setError := executeConfigCommand(testInstance, builder, "set", "gateway.port", "18790")
	require.NoError(testInstance, setError)
	require.Equal(testInstance, "Updated gateway.port\n", output)

	require.Len(testInstance, executor.recordedDetails, 2)
	require.Equal(testInstance, []string{"config", "set", "gateway.port", "18790"}, executor.recordedDetails[1].Arguments)
}

func TestConfigCommandsRejectBlankPathWithoutSpawning(testInstance *testing.T) {
	executor := &recordingOpenClawExecutor{}
	builder := &settings.CommandBuilder{Executor: executor}

	_, getError := executeConfigCommand(testInstance, builder, "get", "   ")
	require.EqualError(testInstance, getError, "path is empty")

	_, setError := executeConfigCommand(testInstance, builder, "set", "", "value")
	require.EqualError(testInstance, setError, "path is empty")

	require.Empty(testInstance, executor.recordedDetails)
}
