package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolateConfiguration(testInstance *testing.T) string {
	testInstance.Helper()
	temporaryDirectory := testInstance.TempDir()
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(temporaryDirectory, "xdg"))
	testInstance.Setenv("HOME", temporaryDirectory)
	testInstance.Setenv("CLAWSETUP_COMMON_LOG_LEVEL", "")
	os.Unsetenv("CLAWSETUP_COMMON_LOG_LEVEL")
	return temporaryDirectory
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := make([]string, 0)
	for _, command := range application.rootCommand.Commands() {
		registeredNames = append(registeredNames, command.Name())
	}
	for _, expectedName := range []string{"security", "install", "config", "serve"} {
		require.Contains(testInstance, registeredNames, expectedName)
	}
}

func TestInitializeConfigurationPrecedence(testInstance *testing.T) {
	temporaryDirectory := isolateConfiguration(testInstance)
	configurationPath := filepath.Join(temporaryDirectory, "clawsetup.yaml")
	configurationContent := "common:\n  log_level: warn\ntools:\n  process:\n    timeout: 45s\n  server:\n    address: 127.0.0.1:9100\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))
	testInstance.Setenv("CLAWSETUP_TOOLS_INSTALL_MINIMUM_NODE_MAJOR", "24")

	application := NewApplication()
	rootCommand := application.rootCommand
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(testInstance, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "console"))

	require.NoError(testInstance, application.initializeConfiguration(rootCommand))

	configuration := application.configuration
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, 45*time.Second, configuration.Tools.Process.Timeout)
	require.Equal(testInstance, "127.0.0.1:9100", configuration.Tools.Server.Address)
	require.Equal(testInstance, 24, configuration.Tools.Install.MinimumNodeMajor)
	require.Equal(testInstance, "text", configuration.Tools.Security.Output)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)

	executorSettings := application.executorSettings()
	require.Equal(testInstance, 45*time.Second, executorSettings.Timeout)
	require.NotNil(testInstance, executorSettings.Observer)
}

func TestExecutorSettingsOmitObserverForStructuredLogs(testInstance *testing.T) {
	isolateConfiguration(testInstance)

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	executorSettings := application.executorSettings()
	require.Nil(testInstance, executorSettings.Observer)
	require.Zero(testInstance, executorSettings.Timeout)
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	isolateConfiguration(testInstance)
	testInstance.Setenv("CLAWSETUP_COMMON_LOG_LEVEL", "verbose")

	application := NewApplication()
	initializationError := application.initializeConfiguration(application.rootCommand)
	require.ErrorContains(testInstance, initializationError, "unsupported log level: verbose")
}

func TestConfigPathCommandEndToEnd(testInstance *testing.T) {
	temporaryDirectory := isolateConfiguration(testInstance)
	configuredPath := filepath.Join(temporaryDirectory, "custom", "openclaw.json")
	testInstance.Setenv("OPENCLAW_CONFIG_PATH", configuredPath)

	application := NewApplication()
	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetArgs([]string{"config", "path"})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, configuredPath+"\n", outputBuffer.String())
}
