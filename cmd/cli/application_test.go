package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repomerge/cmd/cli"
	"github.com/temirov/repomerge/internal/index"
	"github.com/temirov/repomerge/internal/merge"
)

const (
	testConfigurationFileNameConstant  = "config.yaml"
	testRemoteDirectoryNameConstant    = "remote"
	testMergeCommandNameConstant       = "merge"
	testRemoteRootFlagConstant         = "--remote-root"
	testLogLevelFlagConstant           = "--log-level=error"
	testConfigFlagConstant             = "--config"
	testStrictEnvironmentNameConstant  = "REPOMERGE_TOOLS_MERGE_STRICT_INDEX"
	testDeletedPackageFileConstant     = "tachiyomi-x-v1.4.2.apk"
	testRetainedPackageFileConstant    = "tachiyomi-y-v1.4.1.apk"
	testCopiedPackageFileConstant      = "tachiyomi-z-v1.4.0.apk"
	testDeletedIconFileConstant        = "eu.kanade.tachiyomi.extension.x.png"
	testCopiedIconFileConstant         = "eu.kanade.tachiyomi.extension.z.png"
	testRemoteIndexContentConstant     = `[{"pkg":"eu.kanade.tachiyomi.extension.a.x","name":"Tachiyomi: X","apk":"tachiyomi-x-v1.4.2.apk","sources":[{"id":"1","versionId":2}]},{"pkg":"eu.kanade.tachiyomi.extension.b.y","name":"Tachiyomi: Y","apk":"tachiyomi-y-v1.4.1.apk","sources":[{"id":"2","versionId":1}]}]`
	testLocalIndexContentConstant      = `[{"pkg":"eu.kanade.tachiyomi.extension.c.z","name":"Tachiyomi: Z","apk":"tachiyomi-z-v1.4.0.apk","sources":[{"id":"3"}]}]`
	testDeletionSetArgumentConstant    = `["x"]`
	testCorruptIndexContentConstant    = `{"not":"an array"}`
	testExpectedRemainingPackagesQuery = "#.pkg"
)

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, merge.DefaultCommandConfiguration(), configuration.Tools.Merge)
}

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	configurationData, _ := cli.EmbeddedDefaultConfiguration()

	var document struct {
		Tools struct {
			Merge map[string]any `yaml:"merge"`
		} `yaml:"tools"`
	}
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &document))

	var decoded merge.CommandConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &decoded, ErrorUnused: true})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(document.Tools.Merge))

	require.Equal(testInstance, merge.DefaultCommandConfiguration(), decoded)
	require.Len(testInstance, document.Tools.Merge, len(merge.DefaultConfigurationValues("")))
}

func TestApplicationMergeEndToEnd(testInstance *testing.T) {
	remoteRoot, localRoot := prepareRepositories(testInstance)

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{
		testMergeCommandNameConstant,
		testLogLevelFlagConstant,
		testRemoteRootFlagConstant, remoteRoot,
		testDeletionSetArgumentConstant,
	})
	require.NoError(testInstance, executionError)

	fullIndex := readFile(testInstance, filepath.Join(remoteRoot, merge.IndexFileNameConstant))
	require.Equal(testInstance,
		`["eu.kanade.tachiyomi.extension.b.y","eu.kanade.tachiyomi.extension.c.z"]`,
		gjson.GetBytes(fullIndex, testExpectedRemainingPackagesQuery).Raw,
	)

	minifiedIndex := readFile(testInstance, filepath.Join(remoteRoot, merge.MinifiedIndexFileNameConstant))
	require.NotContains(testInstance, string(minifiedIndex), "versionId")
	require.NotContains(testInstance, string(minifiedIndex), "\n")

	listing := readFile(testInstance, filepath.Join(remoteRoot, merge.ListingFileNameConstant))
	require.Contains(testInstance, string(listing), `<a href="apk/tachiyomi-y-v1.4.1.apk">Tachiyomi: Y</a>`)
	require.Contains(testInstance, string(listing), `<a href="apk/tachiyomi-z-v1.4.0.apk">Tachiyomi: Z</a>`)

	require.NoFileExists(testInstance, filepath.Join(remoteRoot, "apk", testDeletedPackageFileConstant))
	require.NoFileExists(testInstance, filepath.Join(remoteRoot, "icon", testDeletedIconFileConstant))
	require.FileExists(testInstance, filepath.Join(remoteRoot, "apk", testRetainedPackageFileConstant))
	require.FileExists(testInstance, filepath.Join(remoteRoot, "apk", testCopiedPackageFileConstant))
	require.FileExists(testInstance, filepath.Join(remoteRoot, "icon", testCopiedIconFileConstant))
	require.FileExists(testInstance, filepath.Join(localRoot, "apk", testCopiedPackageFileConstant))
}

func TestApplicationReadsRemoteRootFromConfigurationFile(testInstance *testing.T) {
	remoteRoot, _ := prepareRepositories(testInstance)

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	configurationContent := []byte("tools:\n  merge:\n    remote_root: " + remoteRoot + "\n")
	require.NoError(testInstance, os.WriteFile(configurationPath, configurationContent, 0o600))

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{
		testMergeCommandNameConstant,
		testLogLevelFlagConstant,
		testConfigFlagConstant, configurationPath,
	})
	require.NoError(testInstance, executionError)

	fullIndex := readFile(testInstance, filepath.Join(remoteRoot, merge.IndexFileNameConstant))
	require.Equal(testInstance, int64(3), gjson.GetBytes(fullIndex, "#").Int())
}

func TestApplicationStrictIndexFromEnvironment(testInstance *testing.T) {
	remoteRoot, _ := prepareRepositories(testInstance)
	corruptIndexPath := filepath.Join(remoteRoot, merge.IndexFileNameConstant)
	require.NoError(testInstance, os.WriteFile(corruptIndexPath, []byte(testCorruptIndexContentConstant), 0o644))

	testInstance.Setenv(testStrictEnvironmentNameConstant, "true")

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{
		testMergeCommandNameConstant,
		testLogLevelFlagConstant,
		testRemoteRootFlagConstant, remoteRoot,
	})
	require.Error(testInstance, executionError)

	var corruptIndexError *index.CorruptIndexError
	require.ErrorAs(testInstance, executionError, &corruptIndexError)
	require.Equal(testInstance, corruptIndexPath, corruptIndexError.Path)
	require.Equal(testInstance, testCorruptIndexContentConstant, string(readFile(testInstance, corruptIndexPath)))
	require.NoFileExists(testInstance, filepath.Join(remoteRoot, merge.ListingFileNameConstant))
}

func TestApplicationRejectsUnsupportedLogLevel(testInstance *testing.T) {
	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{testMergeCommandNameConstant, "--log-level=verbose"})
	require.Error(testInstance, executionError)
}

func prepareRepositories(testInstance *testing.T) (string, string) {
	testInstance.Helper()

	workspace := testInstance.TempDir()
	remoteRoot := filepath.Join(workspace, testRemoteDirectoryNameConstant)
	localRoot := merge.DefaultLocalRoot(remoteRoot)

	writeFixture(testInstance, filepath.Join(remoteRoot, merge.IndexFileNameConstant), testRemoteIndexContentConstant)
	writeFixture(testInstance, filepath.Join(remoteRoot, "apk", testDeletedPackageFileConstant), "old x")
	writeFixture(testInstance, filepath.Join(remoteRoot, "apk", testRetainedPackageFileConstant), "old y")
	writeFixture(testInstance, filepath.Join(remoteRoot, "icon", testDeletedIconFileConstant), "x icon")
	writeFixture(testInstance, filepath.Join(localRoot, merge.MinifiedIndexFileNameConstant), testLocalIndexContentConstant)
	writeFixture(testInstance, filepath.Join(localRoot, "apk", testCopiedPackageFileConstant), "new z")
	writeFixture(testInstance, filepath.Join(localRoot, "icon", testCopiedIconFileConstant), "z icon")

	return remoteRoot, localRoot
}

func writeFixture(testInstance *testing.T, filePath string, content string) {
	testInstance.Helper()

	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o644))
}

func readFile(testInstance *testing.T, filePath string) []byte {
	testInstance.Helper()

	content, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	return content
}

func TestEmbeddedDefaultConfigurationReturnsPrivateCopy(testInstance *testing.T) {
	firstData, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, firstData)
	pristineData := append([]byte(nil), firstData...)

	firstData[0] = '#'
	secondData, _ := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, pristineData, secondData)
}
