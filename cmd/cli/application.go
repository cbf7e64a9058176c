package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/reposcloner/cmd/cli/repos"
	"github.com/temirov/reposcloner/internal/utils"
	flagutils "github.com/temirov/reposcloner/internal/utils/flags"
	pathutils "github.com/temirov/reposcloner/internal/utils/path"
	"github.com/temirov/reposcloner/internal/workspace"
)

const (
	applicationNameConstant                 = "reposcloner"
	applicationShortDescriptionConstant     = "Clone, update, and inspect a list of git repositories"
	applicationLongDescriptionConstant      = "reposcloner keeps a local mirror of the repositories named in a list file. Run it without a subcommand for the interactive menu."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (DEBUG, INFO, WARNING, ERROR)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	repositoriesFileFlagNameConstant        = "repos-file"
	repositoriesFileFlagUsageConstant       = "Override the repository list file."
	repositoriesDirectoryFlagNameConstant   = "repos-dir"
	repositoriesDirectoryFlagUsageConstant  = "Override the directory holding working copies."
	enableLoggingConfigKeyConstant          = "enable_logging"
	logFileConfigKeyConstant                = "log_file"
	logLevelConfigKeyConstant               = "log_level"
	logFormatConfigKeyConstant              = "log_format"
	defaultLogFileConstant                  = "reposcloner.log"
	environmentPrefixConstant               = "REPOCLONER"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationListFieldConstant          = "repos_file"
	configurationDirectoryFieldConstant     = "repos_dir"
	invocationIdentifierFieldConstant       = "invocation_id"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build commands: %w"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
// Workspace keys and logging keys share one flat namespace.
type ApplicationConfiguration struct {
	Workspace     workspace.Configuration `mapstructure:",squash"`
	EnableLogging bool                    `mapstructure:"enable_logging"`
	LogFile       string                  `mapstructure:"log_file"`
	LogLevel      string                  `mapstructure:"log_level"`
	LogFormat     string                  `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                    *cobra.Command
	configurationLoader            *utils.ConfigurationLoader
	loggerFactory                  *utils.LoggerFactory
	pathResolver                   *pathutils.PathResolver
	logger                         *zap.Logger
	configuration                  ApplicationConfiguration
	configurationMetadata          utils.LoadedConfiguration
	configurationFilePath          string
	logLevelFlagValue              string
	logFormatFlagValue             string
	repositoriesFileFlagValue      string
	repositoriesDirectoryFlagValue string
	commandContextAccessor         utils.CommandContextAccessor
	buildError                     error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		pathResolver:           pathutils.NewPathResolver(nil),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	dependencies := repos.Dependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() workspace.Configuration {
			return application.configuration.Workspace
		},
	}
	menuBuilder := &repos.MenuCommandBuilder{Dependencies: dependencies}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return menuBuilder.Run(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	persistentFlags.StringVar(&application.repositoriesFileFlagValue, repositoriesFileFlagNameConstant, "", repositoriesFileFlagUsageConstant)
	persistentFlags.StringVar(&application.repositoriesDirectoryFlagValue, repositoriesDirectoryFlagNameConstant, "", repositoriesDirectoryFlagUsageConstant)

	commandSetBuilder := repos.CommandSetBuilder{Dependencies: dependencies}
	commands, buildError := commandSetBuilder.Build()
	if buildError != nil {
		application.buildError = fmt.Errorf(commandBuildErrorTemplateConstant, buildError)
	}
	cobraCommand.AddCommand(commands...)

	application.rootCommand = cobraCommand

	return application
}

// SetStreams redirects menu input, command output, and Cobra error output.
func (application *Application) SetStreams(input io.Reader, output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetIn(input)
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// Execute runs the command hierarchy with the process arguments. An interrupt
// cancels in-flight batches, which still report every repository.
func (application *Application) Execute() error {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	return application.ExecuteContext(signalContext, os.Args[1:])
}

// ExecuteContext runs the command hierarchy with arguments and flushes the logger.
func (application *Application) ExecuteContext(executionContext context.Context, arguments []string) error {
	if application.buildError != nil {
		return application.buildError
	}

	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	application.rootCommand.SetArgs(normalizedArguments)

	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil {
		return errors.Join(executionError, fmt.Errorf(loggerSyncErrorTemplateConstant, syncError))
	}
	return executionError
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := workspace.DefaultConfigurationValues()
	defaultValues[enableLoggingConfigKeyConstant] = true
	defaultValues[logFileConfigKeyConstant] = defaultLogFileConstant
	defaultValues[logLevelConfigKeyConstant] = string(utils.LogLevelInfo)
	defaultValues[logFormatConfigKeyConstant] = string(utils.LogFormatConsole)

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.LogFormat = application.logFormatFlagValue
	}
	if application.persistentFlagChanged(command, repositoriesFileFlagNameConstant) {
		application.configuration.Workspace.RepositoriesFile = application.repositoriesFileFlagValue
	}
	if application.persistentFlagChanged(command, repositoriesDirectoryFlagNameConstant) {
		application.configuration.Workspace.RepositoriesDirectory = application.repositoriesDirectoryFlagValue
	}

	application.configuration.Workspace = application.configuration.Workspace.Sanitize(application.pathResolver)
	if validationError := application.configuration.Workspace.Validate(); validationError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, validationError)
	}

	logger, loggerCreationError := application.createLogger()
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	invocationIdentifier := uuid.NewString()
	application.logger = logger.With(zap.String(invocationIdentifierFieldConstant, invocationIdentifier))

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationListFieldConstant, application.configuration.Workspace.RepositoriesFile),
		zap.String(configurationDirectoryFieldConstant, application.configuration.Workspace.RepositoriesDirectory),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithInvocationIdentifier(updatedContext, invocationIdentifier)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) createLogger() (*zap.Logger, error) {
	logLevel, levelError := utils.ParseLogLevel(application.configuration.LogLevel)
	if levelError != nil {
		return nil, levelError
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.LogFormat)
	if formatError != nil {
		return nil, formatError
	}

	outputFile := ""
	if len(application.configuration.LogFile) > 0 {
		outputFile = application.pathResolver.Resolve(application.configuration.LogFile)
	}

	return application.loggerFactory.CreateLogger(utils.LoggerOptions{
		Enabled:    application.configuration.EnableLogging,
		Level:      logLevel,
		Format:     logFormat,
		OutputFile: outputFile,
	})
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
