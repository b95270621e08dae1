package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	invalidUTF8ReplacementConstant         = "�"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	planner func(program string, arguments []string) InvocationPlan
}

// NewOSCommandRunner constructs a runner backed by os/exec that plans invocations for the running platform.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{planner: PlanCurrentInvocation}
}

// Run executes the supplied command using os/exec. Arguments are passed as an
// argument vector and never joined into a shell string.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	planner := runner.planner
	if planner == nil {
		planner = PlanCurrentInvocation
	}
	plan := planner(string(command.Name), command.Details.Arguments)
	executable := exec.CommandContext(executionContext, plan.Program, plan.Arguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: decodeOutput(standardOutputBuffer.Bytes()),
				StandardError:  decodeOutput(standardErrorBuffer.Bytes()),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: decodeOutput(standardOutputBuffer.Bytes()),
		StandardError:  decodeOutput(standardErrorBuffer.Bytes()),
		ExitCode:       0,
	}, nil
}

// decodeOutput substitutes invalid UTF-8 sequences instead of failing on them.
func decodeOutput(output []byte) string {
	return strings.ToValidUTF8(string(output), invalidUTF8ReplacementConstant)
}
