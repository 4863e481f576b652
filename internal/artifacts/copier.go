package artifacts

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	destinationDirectoryPermissionConstant = fs.FileMode(0o755)
	walkErrorTemplateConstant              = "unable to traverse %s: %w"
	relativePathErrorTemplateConstant      = "unable to resolve %s relative to %s: %w"
	directoryCreateErrorTemplateConstant   = "unable to create directory %s: %w"
	fileCopyErrorTemplateConstant          = "unable to copy %s to %s: %w"
	copiedArtifactMessageConstant          = "Copied artifact"
	logFieldSourceConstant                 = "source"
	logFieldDestinationConstant            = "destination"
)

// Copier mirrors a directory tree of artifacts into a repository.
type Copier struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewCopier constructs a Copier; a nil logger disables logging.
func NewCopier(fileSystem afero.Fs, logger *zap.Logger) *Copier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{fileSystem: fileSystem, logger: logger}
}

// SourceAvailable reports whether sourceDirectory exists as a directory.
func (copier *Copier) SourceAvailable(sourceDirectory string) (bool, error) {
	return afero.DirExists(copier.fileSystem, sourceDirectory)
}

// CopyTree copies every file under sourceDirectory into destinationDirectory, creating
// directories as needed. Files with matching relative paths are overwritten and other
// destination files are left alone. File modes and modification times are preserved.
// It returns the number of files copied.
func (copier *Copier) CopyTree(sourceDirectory string, destinationDirectory string) (int, error) {
	if mkdirError := copier.fileSystem.MkdirAll(destinationDirectory, destinationDirectoryPermissionConstant); mkdirError != nil {
		return 0, fmt.Errorf(directoryCreateErrorTemplateConstant, destinationDirectory, mkdirError)
	}

	copiedFiles := 0
	walkError := afero.Walk(copier.fileSystem, sourceDirectory, func(sourcePath string, sourceInfo os.FileInfo, visitError error) error {
		if visitError != nil {
			return visitError
		}

		relativePath, relativeError := filepath.Rel(sourceDirectory, sourcePath)
		if relativeError != nil {
			return fmt.Errorf(relativePathErrorTemplateConstant, sourcePath, sourceDirectory, relativeError)
		}
		destinationPath := filepath.Join(destinationDirectory, relativePath)

		if sourceInfo.IsDir() {
			if mkdirError := copier.fileSystem.MkdirAll(destinationPath, destinationDirectoryPermissionConstant); mkdirError != nil {
				return fmt.Errorf(directoryCreateErrorTemplateConstant, destinationPath, mkdirError)
			}
			return nil
		}

		if copyError := copier.copyFile(sourcePath, destinationPath, sourceInfo); copyError != nil {
			return fmt.Errorf(fileCopyErrorTemplateConstant, sourcePath, destinationPath, copyError)
		}

		copier.logger.Debug(
			copiedArtifactMessageConstant,
			zap.String(logFieldSourceConstant, sourcePath),
			zap.String(logFieldDestinationConstant, destinationPath),
		)
		copiedFiles++
		return nil
	})
	if walkError != nil {
		return copiedFiles, fmt.Errorf(walkErrorTemplateConstant, sourceDirectory, walkError)
	}

	return copiedFiles, nil
}

func (copier *Copier) copyFile(sourcePath string, destinationPath string, sourceInfo os.FileInfo) error {
	sourceFile, openError := copier.fileSystem.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	filePermissions := sourceInfo.Mode().Perm()
	destinationFile, createError := copier.fileSystem.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if createError != nil {
		return createError
	}

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		destinationFile.Close()
		return copyError
	}
	if closeError := destinationFile.Close(); closeError != nil {
		return closeError
	}

	if chmodError := copier.fileSystem.Chmod(destinationPath, filePermissions); chmodError != nil {
		return chmodError
	}

	modificationTime := sourceInfo.ModTime()
	return copier.fileSystem.Chtimes(destinationPath, modificationTime, modificationTime)
}
