package merge

import (
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/repomerge/internal/utils/path"
)

const (
	defaultRemoteRootConstant           = "."
	remoteRootConfigurationKeyConstant  = "remote_root"
	localRootConfigurationKeyConstant   = "local_root"
	strictIndexConfigurationKeyConstant = "strict_index"
	configurationKeySeparatorConstant   = "."
	parentDirectoryNameConstant         = ".."
	localRepositoryParentNameConstant   = "main"
	localRepositoryDirectoryConstant    = "repo"
)

var mergeConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

// CommandConfiguration captures persisted configuration for the merge command.
type CommandConfiguration struct {
	RemoteRoot  string `mapstructure:"remote_root"`
	LocalRoot   string `mapstructure:"local_root"`
	StrictIndex bool   `mapstructure:"strict_index"`
}

// DefaultCommandConfiguration returns baseline configuration values for the merge command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteRoot:  defaultRemoteRootConstant,
		LocalRoot:   "",
		StrictIndex: false,
	}
}

// DefaultConfigurationValues exposes the defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, remoteRootConfigurationKeyConstant):  defaults.RemoteRoot,
		prefixedKey(prefix, localRootConfigurationKeyConstant):   defaults.LocalRoot,
		prefixedKey(prefix, strictIndexConfigurationKeyConstant): defaults.StrictIndex,
	}
}

// Sanitize trims configured paths and expands the user's home directory.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteRoot = mergeConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.RemoteRoot))
	sanitized.LocalRoot = mergeConfigurationHomeDirectoryExpander.Expand(strings.TrimSpace(configuration.LocalRoot))
	if len(sanitized.RemoteRoot) == 0 {
		sanitized.RemoteRoot = defaultRemoteRootConstant
	}
	return sanitized
}

// DefaultLocalRoot returns the build output location used when none is configured:
// the "main/repo" directory next to the remote repository root.
func DefaultLocalRoot(remoteRoot string) string {
	return filepath.Join(remoteRoot, parentDirectoryNameConstant, localRepositoryParentNameConstant, localRepositoryDirectoryConstant)
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
