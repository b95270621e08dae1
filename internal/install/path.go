package install

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	windowsPathSeparatorConstant     = `\`
	posixPathSeparatorConstant       = "/"
	windowsPathListSeparatorConstant = ";"
	posixPathListSeparatorConstant   = ":"
	npmBinDirectoryConstant          = "bin"
	windowsPathVariableConstant      = "Path"
	pathVariableConstant             = "PATH"
	pathAlreadyConfiguredMessage     = "PATH already contains npm bin"
	pathManualInstructionTemplate    = "Add to user PATH manually if needed: %s (Then restart this app.)"
)

var defaultEnvironmentLookup EnvironmentLookup = os.LookupEnv

// NpmBinDirectory returns the npm global bin directory for the configured platform.
func (service *Service) NpmBinDirectory(executionContext context.Context) (string, error) {
	prefix, prefixError := service.NpmPrefix(executionContext)
	if prefixError != nil {
		return "", prefixError
	}
	return service.joinBinDirectory(prefix), nil
}

// EnsurePath reports whether the npm global bin directory is already on PATH. It never
// edits the environment; when the directory is missing the message tells the user what to add.
func (service *Service) EnsurePath(executionContext context.Context) (string, error) {
	binDirectory, binError := service.NpmBinDirectory(executionContext)
	if binError != nil {
		return "", binError
	}

	if service.pathContains(binDirectory) {
		return pathAlreadyConfiguredMessage, nil
	}
	return fmt.Sprintf(pathManualInstructionTemplate, binDirectory), nil
}

func (service *Service) joinBinDirectory(prefix string) string {
	separator := posixPathSeparatorConstant
	if service.isWindows() {
		separator = windowsPathSeparatorConstant
		prefix = strings.ReplaceAll(prefix, posixPathSeparatorConstant, windowsPathSeparatorConstant)
	}
	trimmedPrefix := strings.TrimRight(prefix, separator)
	return trimmedPrefix + separator + npmBinDirectoryConstant
}

func (service *Service) pathContains(directory string) bool {
	pathValue, found := service.pathVariable()
	if !found {
		return false
	}

	listSeparator := posixPathListSeparatorConstant
	directorySeparator := posixPathSeparatorConstant
	if service.isWindows() {
		listSeparator = windowsPathListSeparatorConstant
		directorySeparator = windowsPathSeparatorConstant
	}

	wanted := strings.TrimRight(directory, directorySeparator)
	for _, entry := range strings.Split(pathValue, listSeparator) {
		candidate := strings.TrimRight(strings.TrimSpace(entry), directorySeparator)
		if len(candidate) == 0 {
			continue
		}
		if service.isWindows() && strings.EqualFold(candidate, wanted) {
			return true
		}
		if candidate == wanted {
			return true
		}
	}
	return false
}

func (service *Service) pathVariable() (string, bool) {
	if service.isWindows() {
		if value, found := service.lookupEnvironment(windowsPathVariableConstant); found {
			return value, true
		}
	}
	return service.lookupEnvironment(pathVariableConstant)
}

func (service *Service) isWindows() bool {
	return service.platform == windowsPlatformConstant
}
