package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/execshell"
)

type stubOpenClawExecutor struct{}

func (stubOpenClawExecutor) ExecuteOpenClaw(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveLogger(testInstance *testing.T) {
	require.NotNil(testInstance, dependencies.ResolveLogger(nil))
	require.NotNil(testInstance, dependencies.ResolveLogger(func() *zap.Logger { return nil }))

	logger := zap.NewExample()
	require.Same(testInstance, logger, dependencies.ResolveLogger(func() *zap.Logger { return logger }))
}

func TestResolveOpenClawExecutor(testInstance *testing.T) {
	testInstance.Run("keeps_existing", func(testInstance *testing.T) {
		existing := stubOpenClawExecutor{}
		resolved, resolveError := dependencies.ResolveOpenClawExecutor(existing, zap.NewNop(), dependencies.ExecutorSettings{})
		require.NoError(testInstance, resolveError)
		require.Equal(testInstance, existing, resolved)
	})

	testInstance.Run("builds_shell_executor", func(testInstance *testing.T) {
		resolved, resolveError := dependencies.ResolveOpenClawExecutor(nil, zap.NewNop(), dependencies.ExecutorSettings{})
		require.NoError(testInstance, resolveError)
		require.IsType(testInstance, &execshell.ShellExecutor{}, resolved)
	})

	testInstance.Run("requires_logger", func(testInstance *testing.T) {
		resolved, resolveError := dependencies.ResolveOpenClawExecutor(nil, nil, dependencies.ExecutorSettings{})
		require.ErrorIs(testInstance, resolveError, execshell.ErrLoggerNotConfigured)
		require.Nil(testInstance, resolved)
	})
}

func TestResolveOpenClawClient(testInstance *testing.T) {
	client, clientError := dependencies.ResolveOpenClawClient(stubOpenClawExecutor{}, zap.NewNop(), dependencies.ExecutorSettings{})
	require.NoError(testInstance, clientError)
	require.NotNil(testInstance, client)
}
