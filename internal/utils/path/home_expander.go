package pathutils

import (
	"os"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant         = "~"
	forwardSlashSeparator       = "/"
	backwardSlashSeparator      = `\`
	pathSeparatorCharacterGroup = forwardSlashSeparator + backwardSlashSeparator
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts user home shortcuts to absolute paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	separator             string
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup and separator.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir, string(os.PathSeparator))
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider and separator.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider, separator string) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	if len(separator) == 0 {
		separator = string(os.PathSeparator)
	}
	return &HomeExpander{homeDirectoryProvider: provider, separator: separator}
}

// Expand resolves a leading "~", "~/" or "~\" to the user's home directory. Other
// paths, and every path when the home directory is unknown, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil {
		return candidatePath
	}
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	remainder := strings.TrimPrefix(candidatePath, tildeSymbolConstant)
	if len(remainder) > 0 && !strings.ContainsAny(remainder[:1], pathSeparatorCharacterGroup) {
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	relativePath := strings.TrimLeft(remainder, pathSeparatorCharacterGroup)
	if len(relativePath) == 0 {
		return resolvedHomeDirectory
	}
	return strings.TrimRight(resolvedHomeDirectory, pathSeparatorCharacterGroup) + expander.separator + relativePath
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
