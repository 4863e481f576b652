package utils

import (
	"context"
	"path/filepath"
)

type configurationSourceContextKey struct{}

// ConfigurationSource describes where the active configuration was read from.
type ConfigurationSource struct {
	FilePath string
}

// Directory returns the directory holding the configuration file, or "" when only
// embedded defaults and environment variables were used.
func (source ConfigurationSource) Directory() string {
	if len(source.FilePath) == 0 {
		return ""
	}
	return filepath.Dir(source.FilePath)
}

// ResolvePath anchors a relative path at the configuration file's directory.
// Empty and absolute paths, and any path when no file was read, come back unchanged.
func (source ConfigurationSource) ResolvePath(candidatePath string) string {
	configurationDirectory := source.Directory()
	if len(candidatePath) == 0 || len(configurationDirectory) == 0 || filepath.IsAbs(candidatePath) {
		return candidatePath
	}
	return filepath.Join(configurationDirectory, candidatePath)
}

// CommandContextAccessor stores and retrieves values carried on command contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationSource attaches the configuration source to parentContext.
func (accessor CommandContextAccessor) WithConfigurationSource(parentContext context.Context, source ConfigurationSource) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationSourceContextKey{}, source)
}

// ConfigurationSource extracts the configuration source; the zero value is returned when none is attached.
func (accessor CommandContextAccessor) ConfigurationSource(executionContext context.Context) (ConfigurationSource, bool) {
	if executionContext == nil {
		return ConfigurationSource{}, false
	}
	source, available := executionContext.Value(configurationSourceContextKey{}).(ConfigurationSource)
	return source, available
}
