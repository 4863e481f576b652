package artifacts

import (
	"fmt"
	"path/filepath"
)

const (
	// APKDirectoryNameConstant is the repository subdirectory holding packages.
	APKDirectoryNameConstant = "apk"
	// IconDirectoryNameConstant is the repository subdirectory holding icons.
	IconDirectoryNameConstant = "icon"

	apkFileNamePatternTemplateConstant = "tachiyomi-%s-v*.*.*.apk"
	iconFileNameTemplateConstant       = "eu.kanade.tachiyomi.extension.%s.png"
)

// ModuleArtifacts names the files a module publishes.
// The module name is inserted verbatim, so glob metacharacters keep their meaning.
type ModuleArtifacts struct {
	Module string
}

// APKPattern returns the glob matching every published version of the module's package.
func (moduleArtifacts ModuleArtifacts) APKPattern() string {
	return fmt.Sprintf(apkFileNamePatternTemplateConstant, moduleArtifacts.Module)
}

// IconFileName returns the module's icon file name.
func (moduleArtifacts ModuleArtifacts) IconFileName() string {
	return fmt.Sprintf(iconFileNameTemplateConstant, moduleArtifacts.Module)
}

// MatchesAPK reports whether fileName is one of the module's package files.
func (moduleArtifacts ModuleArtifacts) MatchesAPK(fileName string) (bool, error) {
	return filepath.Match(moduleArtifacts.APKPattern(), fileName)
}

// MatchesIcon reports whether fileName is the module's icon.
func (moduleArtifacts ModuleArtifacts) MatchesIcon(fileName string) (bool, error) {
	return filepath.Match(moduleArtifacts.IconFileName(), fileName)
}
