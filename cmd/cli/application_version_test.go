package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplicationVersionFlagPrintsVersionAndExits(testInstance *testing.T) {
	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return "v1.2.0"
	}

	exitCode := -1
	sentinel := "version-exit"
	application.exitFunction = func(code int) {
		exitCode = code
		panic(sentinel)
	}

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetArgs([]string{"--version"})

	require.PanicsWithValue(testInstance, sentinel, func() {
		_ = application.Execute()
	})

	require.Equal(testInstance, "clawsetup version: v1.2.0\n", outputBuffer.String())
	require.Equal(testInstance, 0, exitCode)
}

func TestResolveBuildVersionFallsBackToDevel(testInstance *testing.T) {
	require.NotEmpty(testInstance, resolveBuildVersion(context.Background()))
}
