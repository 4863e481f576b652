package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	directoryListErrorTemplateConstant = "unable to list %s: %w"
	fileRemoveErrorTemplateConstant    = "unable to remove %s: %w"
	prunedArtifactMessageConstant      = "Removed artifact of deleted module"
	invalidPatternMessageConstant      = "Module name produced an unusable file pattern"
	logFieldModuleConstant             = "module"
	logFieldFileConstant               = "file"
	logFieldDirectoryConstant          = "directory"
)

type artifactMatcher func(moduleArtifacts ModuleArtifacts, fileName string) (bool, error)

// Pruner deletes the artifacts of removed modules from a repository.
type Pruner struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewPruner constructs a Pruner; a nil logger disables logging.
func NewPruner(fileSystem afero.Fs, logger *zap.Logger) *Pruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pruner{fileSystem: fileSystem, logger: logger}
}

// Prune removes every APK and icon under repositoryRoot belonging to one of modules and
// returns the removed paths. Files that are already gone are skipped, so repeated runs
// leave the same state.
func (pruner *Pruner) Prune(repositoryRoot string, modules []string) ([]string, error) {
	apkDirectory := filepath.Join(repositoryRoot, APKDirectoryNameConstant)
	iconDirectory := filepath.Join(repositoryRoot, IconDirectoryNameConstant)

	var removedPaths []string
	for _, module := range modules {
		moduleArtifacts := ModuleArtifacts{Module: module}

		removedPackages, packagesError := pruner.pruneDirectory(apkDirectory, moduleArtifacts, ModuleArtifacts.MatchesAPK)
		if packagesError != nil {
			return removedPaths, packagesError
		}
		removedPaths = append(removedPaths, removedPackages...)

		removedIcons, iconsError := pruner.pruneDirectory(iconDirectory, moduleArtifacts, ModuleArtifacts.MatchesIcon)
		if iconsError != nil {
			return removedPaths, iconsError
		}
		removedPaths = append(removedPaths, removedIcons...)
	}

	return removedPaths, nil
}

func (pruner *Pruner) pruneDirectory(directory string, moduleArtifacts ModuleArtifacts, matcher artifactMatcher) ([]string, error) {
	directoryEntries, listError := afero.ReadDir(pruner.fileSystem, directory)
	if listError != nil {
		if errors.Is(listError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(directoryListErrorTemplateConstant, directory, listError)
	}

	var removedPaths []string
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}

		matches, matchError := matcher(moduleArtifacts, directoryEntry.Name())
		if matchError != nil {
			pruner.logger.Debug(
				invalidPatternMessageConstant,
				zap.String(logFieldModuleConstant, moduleArtifacts.Module),
				zap.String(logFieldDirectoryConstant, directory),
				zap.Error(matchError),
			)
			return removedPaths, nil
		}
		if !matches {
			continue
		}

		artifactPath := filepath.Join(directory, directoryEntry.Name())
		removeError := pruner.fileSystem.Remove(artifactPath)
		if removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			return removedPaths, fmt.Errorf(fileRemoveErrorTemplateConstant, artifactPath, removeError)
		}

		pruner.logger.Info(
			prunedArtifactMessageConstant,
			zap.String(logFieldModuleConstant, moduleArtifacts.Module),
			zap.String(logFieldFileConstant, directoryEntry.Name()),
		)
		removedPaths = append(removedPaths, artifactPath)
	}

	return removedPaths, nil
}
