package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitializeConfigurationAttachesConfigurationPath(t *testing.T) {
	configurationPath := filepath.Join(t.TempDir(), "config.yaml")
	configurationContent := []byte("common:\n  log_level: warn\ntools:\n  merge:\n    strict_index: true\n")
	require.NoError(t, os.WriteFile(configurationPath, configurationContent, 0o600))

	application := NewApplication()
	rootCommand := application.rootCommand
	rootCommand.SetContext(context.Background())

	require.NoError(t, rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
	require.NoError(t, rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "CONSOLE"))

	initializationError := application.initializeConfiguration(rootCommand)
	require.NoError(t, initializationError)

	attachedSource, attached := application.commandContextAccessor.ConfigurationSource(rootCommand.Context())
	require.True(t, attached)
	require.Equal(t, configurationPath, attachedSource.FilePath)
	require.Equal(t, filepath.Dir(configurationPath), attachedSource.Directory())

	require.Equal(t, "warn", application.configuration.Common.LogLevel)
	require.Equal(t, "console", application.configuration.Common.LogFormat)
	require.True(t, application.configuration.Tools.Merge.StrictIndex)
	require.Equal(t, ".", application.configuration.Tools.Merge.RemoteRoot)
}

func TestPersistentFlagValueReportsOnlyChangedFlags(t *testing.T) {
	application := NewApplication()
	mergeCommand, _, findError := application.rootCommand.Find([]string{mergeCommandNameConstant})
	require.NoError(t, findError)

	_, changed := application.persistentFlagValue(mergeCommand, logLevelFlagNameConstant)
	require.False(t, changed)

	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	value, changed := application.persistentFlagValue(mergeCommand, logLevelFlagNameConstant)
	require.True(t, changed)
	require.Equal(t, "debug", value)

	_, changed = application.persistentFlagValue(nil, logLevelFlagNameConstant)
	require.False(t, changed)
}

func TestApplicationVersionFlagPrintsVersion(t *testing.T) {
	originalVersion := applicationVersion
	applicationVersion = "v2.0.0"
	t.Cleanup(func() {
		applicationVersion = originalVersion
	})

	application := NewApplication()
	var output bytes.Buffer
	application.rootCommand.SetOut(&output)

	require.NoError(t, application.ExecuteWithArguments([]string{"--version"}))
	require.Equal(t, "repomerge version: v2.0.0\n", output.String())
}

func TestSyncLoggerInstanceToleratesMissingLogger(t *testing.T) {
	application := &Application{}
	require.NoError(t, application.syncLoggerInstance(nil))
	require.NoError(t, application.syncLoggerInstance(zap.NewNop()))
}
