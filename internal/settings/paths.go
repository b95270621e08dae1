package settings

import (
	"errors"
	"os"
	"runtime"
	"strings"

	pathutils "github.com/temirov/clawsetup/internal/utils/path"
)

const (
	stateDirectoryEnvironmentConstant = "OPENCLAW_STATE_DIR"
	configPathEnvironmentConstant     = "OPENCLAW_CONFIG_PATH"
	userProfileEnvironmentConstant    = "USERPROFILE"
	homeEnvironmentConstant           = "HOME"
	stateDirectoryNameConstant        = ".openclaw"
	configFileNameConstant            = "openclaw.json"
	windowsPlatformConstant           = "windows"
	windowsSeparatorConstant          = `\`
	posixSeparatorConstant            = "/"
	homeNotSetMessageConstant         = "USERPROFILE and HOME are not set"
)

// ErrHomeNotSet indicates neither USERPROFILE nor HOME is available.
var ErrHomeNotSet = errors.New(homeNotSetMessageConstant)

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolverOption customizes a PathResolver.
type ResolverOption func(resolver *PathResolver)

// WithPlatform overrides the operating system name used for separators.
func WithPlatform(platform string) ResolverOption {
	return func(resolver *PathResolver) {
		if len(platform) > 0 {
			resolver.platform = platform
		}
	}
}

// WithEnvironmentLookup overrides how environment variables are read.
func WithEnvironmentLookup(lookup EnvironmentLookup) ResolverOption {
	return func(resolver *PathResolver) {
		if lookup != nil {
			resolver.lookupEnvironment = lookup
		}
	}
}

// PathResolver computes the openclaw state directory and configuration file locations.
type PathResolver struct {
	platform          string
	lookupEnvironment EnvironmentLookup
	homeExpander      *pathutils.HomeExpander
}

// NewPathResolver constructs a resolver for the running platform and process environment.
func NewPathResolver(options ...ResolverOption) *PathResolver {
	resolver := &PathResolver{platform: runtime.GOOS, lookupEnvironment: os.LookupEnv}
	for _, option := range options {
		if option != nil {
			option(resolver)
		}
	}
	resolver.homeExpander = pathutils.NewHomeExpanderWithProvider(resolver.homeDirectory, resolver.separator())
	return resolver
}

// ResolveStateDirectory returns OPENCLAW_STATE_DIR when set, otherwise the .openclaw
// directory under USERPROFILE or HOME.
func (resolver *PathResolver) ResolveStateDirectory() (string, error) {
	if configured := resolver.configuredPath(stateDirectoryEnvironmentConstant); len(configured) > 0 {
		return configured, nil
	}

	homeDirectory, homeError := resolver.homeDirectory()
	if homeError != nil {
		return "", homeError
	}
	return resolver.join(homeDirectory, stateDirectoryNameConstant), nil
}

// ResolveConfigPath returns OPENCLAW_CONFIG_PATH when set, otherwise openclaw.json
// inside the state directory.
func (resolver *PathResolver) ResolveConfigPath() (string, error) {
	if configured := resolver.configuredPath(configPathEnvironmentConstant); len(configured) > 0 {
		return configured, nil
	}

	stateDirectory, stateError := resolver.ResolveStateDirectory()
	if stateError != nil {
		return "", stateError
	}
	return resolver.join(stateDirectory, configFileNameConstant), nil
}

func (resolver *PathResolver) configuredPath(environmentKey string) string {
	value, found := resolver.lookupEnvironment(environmentKey)
	if !found {
		return ""
	}
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return ""
	}
	return resolver.normalize(resolver.homeExpander.Expand(trimmedValue))
}

func (resolver *PathResolver) homeDirectory() (string, error) {
	for _, environmentKey := range []string{userProfileEnvironmentConstant, homeEnvironmentConstant} {
		value, found := resolver.lookupEnvironment(environmentKey)
		if found && len(strings.TrimSpace(value)) > 0 {
			return strings.TrimSpace(value), nil
		}
	}
	return "", ErrHomeNotSet
}

func (resolver *PathResolver) normalize(path string) string {
	normalized := strings.TrimSpace(path)
	if resolver.isWindows() {
		normalized = strings.ReplaceAll(normalized, posixSeparatorConstant, windowsSeparatorConstant)
	}
	trimmed := strings.TrimRight(normalized, resolver.separator())
	if len(trimmed) == 0 {
		return normalized
	}
	return trimmed
}

func (resolver *PathResolver) join(directory string, name string) string {
	return strings.TrimRight(directory, posixSeparatorConstant+windowsSeparatorConstant) + resolver.separator() + name
}

func (resolver *PathResolver) separator() string {
	if resolver.isWindows() {
		return windowsSeparatorConstant
	}
	return posixSeparatorConstant
}

func (resolver *PathResolver) isWindows() bool {
	return resolver.platform == windowsPlatformConstant
}
