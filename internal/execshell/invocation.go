package execshell

import (
	"runtime"
	"strings"
)

const (
	windowsPlatformConstant            = "windows"
	windowsInterpreterProgramConstant  = "cmd"
	windowsInterpreterCommandFlag      = "/C"
	forwardSlashPathSeparatorConstant  = "/"
	backwardSlashPathSeparatorConstant = "\\"
)

// scriptWrappedPrograms lists tools installed as .cmd wrappers on Windows, which
// CreateProcess cannot launch directly.
var scriptWrappedPrograms = []CommandName{
	CommandNpm,
	CommandNpx,
	CommandOpenClaw,
}

// InvocationPlan describes the concrete process that will be spawned for a command.
type InvocationPlan struct {
	Program     string
	Arguments   []string
	Interpreted bool
}

// PlanInvocation decides how program should be launched on platform. Programs on the
// script-wrapper allow-list run through the Windows command interpreter; everything
// else, on every platform, is launched directly.
func PlanInvocation(platform string, program string, arguments []string) InvocationPlan {
	duplicatedArguments := append([]string{}, arguments...)
	if platform != windowsPlatformConstant || !IsScriptWrappedProgram(program) {
		return InvocationPlan{Program: program, Arguments: duplicatedArguments}
	}

	interpretedArguments := make([]string, 0, len(duplicatedArguments)+2)
	interpretedArguments = append(interpretedArguments, windowsInterpreterCommandFlag, program)
	interpretedArguments = append(interpretedArguments, duplicatedArguments...)
	return InvocationPlan{
		Program:     windowsInterpreterProgramConstant,
		Arguments:   interpretedArguments,
		Interpreted: true,
	}
}

// PlanCurrentInvocation plans program for the running operating system.
func PlanCurrentInvocation(program string, arguments []string) InvocationPlan {
	return PlanInvocation(runtime.GOOS, program, arguments)
}

// IsScriptWrappedProgram reports whether the base name of program is on the allow-list.
func IsScriptWrappedProgram(program string) bool {
	baseName := programBaseName(program)
	for _, candidate := range scriptWrappedPrograms {
		if strings.EqualFold(string(candidate), baseName) {
			return true
		}
	}
	return false
}

func programBaseName(program string) string {
	trimmedProgram := strings.TrimSpace(program)
	separatorIndex := strings.LastIndexAny(trimmedProgram, forwardSlashPathSeparatorConstant+backwardSlashPathSeparatorConstant)
	if separatorIndex < 0 {
		return trimmedProgram
	}
	return trimmedProgram[separatorIndex+1:]
}
