package merge

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/artifacts"
	"github.com/temirov/repomerge/internal/index"
	"github.com/temirov/repomerge/internal/listing"
)

const (
	// IndexFileNameConstant is the full, pretty-printed package index.
	IndexFileNameConstant = "index.json"
	// MinifiedIndexFileNameConstant is the compact package index without source version identifiers.
	MinifiedIndexFileNameConstant = "index.min.json"
	// ListingFileNameConstant is the static HTML listing of the repository.
	ListingFileNameConstant = "index.html"

	outputFilePermissionConstant         = fs.FileMode(0o644)
	fileSystemMissingMessageConstant     = "filesystem not configured"
	remoteRootMissingMessageConstant     = "remote repository root must be provided"
	localRootMissingMessageConstant      = "local repository root must be provided"
	pruneErrorTemplateConstant           = "artifact pruning failed: %w"
	copyErrorTemplateConstant            = "artifact copy failed: %w"
	indexLoadErrorTemplateConstant       = "unable to load %s index: %w"
	minifyErrorTemplateConstant          = "unable to minify index: %w"
	encodeErrorTemplateConstant          = "unable to encode index: %w"
	writeErrorTemplateConstant           = "unable to write %s: %w"
	listingErrorTemplateConstant         = "unable to generate listing: %w"
	remoteIndexRoleConstant              = "remote"
	localIndexRoleConstant               = "local"
	mergeStartedMessageConstant          = "Merging repository"
	copyStartedMessageConstant           = "Copying artifacts"
	copySkippedMessageConstant           = "Local artifact directory does not exist; skipping copy"
	indexMissingMessageConstant          = "Index not found; using empty index"
	indexCorruptMessageConstant          = "Index could not be parsed; using empty index"
	indexLoadedMessageConstant           = "Index loaded"
	fileWrittenMessageConstant           = "File written"
	logFieldRemoteRootConstant           = "remote_root"
	logFieldLocalRootConstant            = "local_root"
	logFieldModulesConstant              = "modules"
	logFieldStrictIndexConstant          = "strict_index"
	logFieldSourceDirectoryConstant      = "source"
	logFieldDestinationDirectoryConstant = "destination"
	logFieldIndexPathConstant            = "path"
	logFieldIndexRoleConstant            = "index"
	logFieldEntryCountConstant           = "entries"
	logFieldFilePathConstant             = "file"
	logFieldByteCountConstant            = "bytes"
	localIndexFileNameConstant           = MinifiedIndexFileNameConstant
)

var (
	errFileSystemMissing = errors.New(fileSystemMissingMessageConstant)
	errRemoteRootMissing = errors.New(remoteRootMissingMessageConstant)
	errLocalRootMissing  = errors.New(localRootMissingMessageConstant)
)

// ServiceDependencies describes required collaborators for the merge.
type ServiceDependencies struct {
	Logger     *zap.Logger
	FileSystem afero.Fs
}

// Options configures a merge run.
type Options struct {
	RemoteRoot  string
	LocalRoot   string
	DeletionSet index.DeletionSet
	StrictIndex bool
}

// Result captures the observable outcomes of a merge run.
type Result struct {
	PrunedFiles           []string
	CopiedPackageFiles    int
	CopiedIconFiles       int
	RemoteEntries         int
	RetainedRemoteEntries int
	LocalEntries          int
	MergedEntries         int
}

// Executor runs a merge.
type Executor interface {
	Execute(options Options) (Result, error)
}

// Service orchestrates the repository merge.
type Service struct {
	logger     *zap.Logger
	fileSystem afero.Fs
	pruner     *artifacts.Pruner
	copier     *artifacts.Copier
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.FileSystem == nil {
		return nil, errFileSystemMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		logger:     logger,
		fileSystem: dependencies.FileSystem,
		pruner:     artifacts.NewPruner(dependencies.FileSystem, logger),
		copier:     artifacts.NewCopier(dependencies.FileSystem, logger),
	}, nil
}

// Execute prunes, copies, merges, and regenerates the repository indices and listing.
func (service *Service) Execute(options Options) (Result, error) {
	if len(options.RemoteRoot) == 0 {
		return Result{}, errRemoteRootMissing
	}
	if len(options.LocalRoot) == 0 {
		return Result{}, errLocalRootMissing
	}

	service.logger.Info(
		mergeStartedMessageConstant,
		zap.String(logFieldRemoteRootConstant, options.RemoteRoot),
		zap.String(logFieldLocalRootConstant, options.LocalRoot),
		zap.Strings(logFieldModulesConstant, options.DeletionSet.Modules()),
		zap.Bool(logFieldStrictIndexConstant, options.StrictIndex),
	)

	var result Result

	prunedFiles, pruneError := service.pruner.Prune(options.RemoteRoot, options.DeletionSet.Modules())
	if pruneError != nil {
		return result, fmt.Errorf(pruneErrorTemplateConstant, pruneError)
	}
	result.PrunedFiles = prunedFiles

	copiedPackageFiles, packageCopyError := service.copyArtifacts(options, artifacts.APKDirectoryNameConstant)
	if packageCopyError != nil {
		return result, packageCopyError
	}
	result.CopiedPackageFiles = copiedPackageFiles

	copiedIconFiles, iconCopyError := service.copyArtifacts(options, artifacts.IconDirectoryNameConstant)
	if iconCopyError != nil {
		return result, iconCopyError
	}
	result.CopiedIconFiles = copiedIconFiles

	remoteIndex, remoteLoadError := service.loadIndex(filepath.Join(options.RemoteRoot, IndexFileNameConstant), remoteIndexRoleConstant, options.StrictIndex)
	if remoteLoadError != nil {
		return result, remoteLoadError
	}
	localIndex, localLoadError := service.loadIndex(filepath.Join(options.LocalRoot, localIndexFileNameConstant), localIndexRoleConstant, options.StrictIndex)
	if localLoadError != nil {
		return result, localLoadError
	}

	mergedIndex := index.Merge(remoteIndex, localIndex, options.DeletionSet)
	result.RemoteEntries = len(remoteIndex)
	result.LocalEntries = len(localIndex)
	result.MergedEntries = len(mergedIndex)
	result.RetainedRemoteEntries = len(mergedIndex) - len(localIndex)

	if writeError := service.writeIndices(options.RemoteRoot, mergedIndex); writeError != nil {
		return result, writeError
	}

	if listingError := service.writeListing(options.RemoteRoot, mergedIndex); listingError != nil {
		return result, listingError
	}

	return result, nil
}

func (service *Service) copyArtifacts(options Options, directoryName string) (int, error) {
	sourceDirectory := filepath.Join(options.LocalRoot, directoryName)
	destinationDirectory := filepath.Join(options.RemoteRoot, directoryName)

	available, availabilityError := service.copier.SourceAvailable(sourceDirectory)
	if availabilityError != nil {
		return 0, fmt.Errorf(copyErrorTemplateConstant, availabilityError)
	}
	if !available {
		service.logger.Warn(copySkippedMessageConstant, zap.String(logFieldSourceDirectoryConstant, sourceDirectory))
		return 0, nil
	}

	service.logger.Info(
		copyStartedMessageConstant,
		zap.String(logFieldSourceDirectoryConstant, sourceDirectory),
		zap.String(logFieldDestinationDirectoryConstant, destinationDirectory),
	)

	copiedFiles, copyError := service.copier.CopyTree(sourceDirectory, destinationDirectory)
	if copyError != nil {
		return copiedFiles, fmt.Errorf(copyErrorTemplateConstant, copyError)
	}
	return copiedFiles, nil
}

func (service *Service) loadIndex(indexPath string, role string, strictIndex bool) (index.Index, error) {
	entries, loadError := index.Load(service.fileSystem, indexPath)
	if loadError == nil {
		service.logger.Debug(
			indexLoadedMessageConstant,
			zap.String(logFieldIndexRoleConstant, role),
			zap.String(logFieldIndexPathConstant, indexPath),
			zap.Int(logFieldEntryCountConstant, len(entries)),
		)
		return entries, nil
	}

	if errors.Is(loadError, index.ErrIndexMissing) {
		service.logger.Warn(
			indexMissingMessageConstant,
			zap.String(logFieldIndexRoleConstant, role),
			zap.String(logFieldIndexPathConstant, indexPath),
		)
		return index.Index{}, nil
	}

	var corruptIndexError *index.CorruptIndexError
	if errors.As(loadError, &corruptIndexError) && !strictIndex {
		service.logger.Warn(
			indexCorruptMessageConstant,
			zap.String(logFieldIndexRoleConstant, role),
			zap.String(logFieldIndexPathConstant, indexPath),
			zap.Error(loadError),
		)
		return index.Index{}, nil
	}

	return nil, fmt.Errorf(indexLoadErrorTemplateConstant, role, loadError)
}

func (service *Service) writeIndices(remoteRoot string, mergedIndex index.Index) error {
	fullDocument, encodeError := index.EncodeFull(mergedIndex)
	if encodeError != nil {
		return fmt.Errorf(encodeErrorTemplateConstant, encodeError)
	}
	if writeError := service.writeFile(filepath.Join(remoteRoot, IndexFileNameConstant), fullDocument); writeError != nil {
		return writeError
	}

	minifiedIndex, minifyError := index.Minify(mergedIndex)
	if minifyError != nil {
		return fmt.Errorf(minifyErrorTemplateConstant, minifyError)
	}
	return service.writeFile(filepath.Join(remoteRoot, MinifiedIndexFileNameConstant), index.EncodeMinified(minifiedIndex))
}

func (service *Service) writeListing(remoteRoot string, mergedIndex index.Index) error {
	links := make([]listing.Link, 0, len(mergedIndex))
	for _, entry := range mergedIndex {
		links = append(links, listing.Link{Name: entry.DisplayName(), APKFileName: entry.APKFileName()})
	}

	var listingBuffer bytes.Buffer
	if renderError := listing.Render(&listingBuffer, links); renderError != nil {
		return fmt.Errorf(listingErrorTemplateConstant, renderError)
	}
	return service.writeFile(filepath.Join(remoteRoot, ListingFileNameConstant), listingBuffer.Bytes())
}

func (service *Service) writeFile(filePath string, content []byte) error {
	if writeError := afero.WriteFile(service.fileSystem, filePath, content, outputFilePermissionConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, filePath, writeError)
	}
	service.logger.Debug(
		fileWrittenMessageConstant,
		zap.String(logFieldFilePathConstant, filePath),
		zap.Int(logFieldByteCountConstant, len(content)),
	)
	return nil
}
