package merge

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repomerge/internal/index"
	"github.com/temirov/repomerge/internal/utils"
	"github.com/temirov/repomerge/internal/utils/flags"
)

const (
	commandUseConstant                    = "merge [DELETION_SET_JSON]"
	commandShortDescriptionConstant       = "Merge freshly built extensions into the published repository"
	commandLongDescriptionConstant        = "merge removes artifacts of deleted modules, copies newly built APKs and icons into the published repository, merges the package indices, and regenerates index.json, index.min.json and index.html. The optional argument is a JSON array of module names to delete, for example '[\"en.example\"]'; further arguments are ignored. Relative roots read from a configuration file resolve against that file's directory."
	commandExecutionErrorTemplateConstant = "repository merge failed: %w"
	rootResolutionErrorTemplateConstant   = "unable to resolve %s: %w"
	remoteRootFlagNameConstant            = "remote-root"
	remoteRootFlagUsageConstant           = "Published repository checkout to merge into"
	localRootFlagNameConstant             = "local-root"
	localRootFlagUsageConstant            = "Build output repository to merge from (defaults to ../main/repo next to the remote root)"
	strictIndexFlagNameConstant           = "strict-index"
	strictIndexFlagUsageConstant          = "Fail instead of falling back to an empty index when an index cannot be parsed"
	mergeCompletedMessageConstant         = "Repository merge completed"
	deletionSetParsedMessageConstant      = "Deletion set parsed"
	extraArgumentsIgnoredMessageConstant  = "Ignoring arguments after the deletion set"
	logFieldIgnoredArgumentsConstant      = "ignored_arguments"
	logFieldArgumentConstant              = "argument"
	logFieldDeletionSetConstant           = "modules"
	logFieldConfigFileConstant            = "config_file"
	logFieldPrunedFilesConstant           = "pruned_files"
	logFieldCopiedPackagesConstant        = "copied_packages"
	logFieldCopiedIconsConstant           = "copied_icons"
	logFieldRemoteEntriesConstant         = "remote_entries"
	logFieldRetainedEntriesConstant       = "retained_remote_entries"
	logFieldLocalEntriesConstant          = "local_entries"
	logFieldMergedEntriesConstant         = "merged_entries"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceProvider constructs a merge executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (Executor, error)

// CommandBuilder assembles the merge Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	FileSystem            afero.Fs
	ServiceProvider       ServiceProvider
}

// Build constructs the merge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE:          builder.runMerge,
	}

	command.Flags().String(remoteRootFlagNameConstant, "", remoteRootFlagUsageConstant)
	command.Flags().String(localRootFlagNameConstant, "", localRootFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), nil, strictIndexFlagNameConstant, "", false, strictIndexFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMerge(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, arguments, logger)
	if optionsError != nil {
		return optionsError
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:     logger,
		FileSystem: builder.resolveFileSystem(),
	})
	if serviceError != nil {
		return serviceError
	}

	result, executionError := service.Execute(options)
	if executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}

	builder.logSummary(logger, result)
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string, logger *zap.Logger) (Options, error) {
	configuration := builder.resolveConfiguration()

	configurationSource := utils.ConfigurationSource{}
	if command != nil {
		configurationSource, _ = utils.NewCommandContextAccessor().ConfigurationSource(command.Context())
	}

	// Flag values stay relative to the working directory.
	remoteRoot := configurationSource.ResolvePath(configuration.RemoteRoot)
	localRoot := configurationSource.ResolvePath(configuration.LocalRoot)
	strictIndex := configuration.StrictIndex

	if command != nil {
		if command.Flags().Changed(remoteRootFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(remoteRootFlagNameConstant)
			remoteRoot = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(localRootFlagNameConstant) {
			flagValue, _ := command.Flags().GetString(localRootFlagNameConstant)
			localRoot = strings.TrimSpace(flagValue)
		}
		if command.Flags().Changed(strictIndexFlagNameConstant) {
			flagValue, flagError := command.Flags().GetBool(strictIndexFlagNameConstant)
			if flagError != nil {
				return Options{}, flagError
			}
			strictIndex = flagValue
		}
	}

	absoluteRemoteRoot, remoteRootError := filepath.Abs(remoteRoot)
	if remoteRootError != nil {
		return Options{}, fmt.Errorf(rootResolutionErrorTemplateConstant, remoteRootFlagNameConstant, remoteRootError)
	}

	if len(localRoot) == 0 {
		localRoot = DefaultLocalRoot(absoluteRemoteRoot)
	}
	absoluteLocalRoot, localRootError := filepath.Abs(localRoot)
	if localRootError != nil {
		return Options{}, fmt.Errorf(rootResolutionErrorTemplateConstant, localRootFlagNameConstant, localRootError)
	}

	rawDeletionSet := ""
	if len(arguments) > 0 {
		rawDeletionSet = arguments[0]
	}
	if len(arguments) > 1 {
		logger.Warn(extraArgumentsIgnoredMessageConstant, zap.Strings(logFieldIgnoredArgumentsConstant, arguments[1:]))
	}
	deletionSet := index.ParseDeletionSet(rawDeletionSet)

	logger.Debug(
		deletionSetParsedMessageConstant,
		zap.String(logFieldArgumentConstant, rawDeletionSet),
		zap.Strings(logFieldDeletionSetConstant, deletionSet.Modules()),
		zap.String(logFieldConfigFileConstant, configurationSource.FilePath),
	)

	return Options{
		RemoteRoot:  absoluteRemoteRoot,
		LocalRoot:   absoluteLocalRoot,
		DeletionSet: deletionSet,
		StrictIndex: strictIndex,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveFileSystem() afero.Fs {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return afero.NewOsFs()
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (Executor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Sanitize()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func (builder *CommandBuilder) logSummary(logger *zap.Logger, result Result) {
	logger.Info(
		mergeCompletedMessageConstant,
		zap.Strings(logFieldPrunedFilesConstant, result.PrunedFiles),
		zap.Int(logFieldCopiedPackagesConstant, result.CopiedPackageFiles),
		zap.Int(logFieldCopiedIconsConstant, result.CopiedIconFiles),
		zap.Int(logFieldRemoteEntriesConstant, result.RemoteEntries),
		zap.Int(logFieldRetainedEntriesConstant, result.RetainedRemoteEntries),
		zap.Int(logFieldLocalEntriesConstant, result.LocalEntries),
		zap.Int(logFieldMergedEntriesConstant, result.MergedEntries),
	)
}
