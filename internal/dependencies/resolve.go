package dependencies

import (
	"time"

	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/execshell"
	"github.com/temirov/clawsetup/internal/openclaw"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ExecutorSettings configures the default shell executor.
type ExecutorSettings struct {
	Observer execshell.CommandEventObserver
	Timeout  time.Duration
}

// ResolveLogger returns the provider's logger or a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveShellExecutor constructs a shell-backed executor for the running platform.
func ResolveShellExecutor(logger *zap.Logger, settings ExecutorSettings) (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	return execshell.NewShellExecutor(
		logger,
		commandRunner,
		execshell.WithCommandEventObserver(settings.Observer),
		execshell.WithTimeout(settings.Timeout),
	)
}

// ResolveOpenClawExecutor returns the provided executor or constructs a shell-backed default.
func ResolveOpenClawExecutor(existing openclaw.CommandExecutor, logger *zap.Logger, settings ExecutorSettings) (openclaw.CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	shellExecutor, creationError := ResolveShellExecutor(logger, settings)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveOpenClawClient constructs an openclaw client around the provided or default executor.
func ResolveOpenClawClient(existing openclaw.CommandExecutor, logger *zap.Logger, settings ExecutorSettings) (*openclaw.Client, error) {
	executor, executorError := ResolveOpenClawExecutor(existing, logger, settings)
	if executorError != nil {
		return nil, executorError
	}
	return openclaw.NewClient(executor)
}
