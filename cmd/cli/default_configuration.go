package cli

import "embed"

const embeddedDefaultConfigurationNameConstant = "default_config.yaml"

//go:embed default_config.yaml
var embeddedDefaultConfigurationFiles embed.FS

// EmbeddedDefaultConfiguration returns a private copy of the built-in configuration document and its format.
// The document ships with the binary, so a read failure only leaves the loader without defaults.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	defaultContent, readError := embeddedDefaultConfigurationFiles.ReadFile(embeddedDefaultConfigurationNameConstant)
	if readError != nil {
		return nil, configurationTypeConstant
	}
	return defaultContent, configurationTypeConstant
}
