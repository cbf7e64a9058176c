package workspace

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/reposcloner/internal/gitclient"
	pathutils "github.com/temirov/reposcloner/internal/utils/path"
)

// Configuration keys shared by the configuration file, environment, and flags.
const (
	RepositoriesDirectoryKey = "repos_dir"
	RepositoriesFileKey      = "repos_file"
	MaxRetriesKey            = "max_retries"
	RetryDelayKey            = "retry_delay"
	MaxWorkersKey            = "max_workers"
	AutoParallelKey          = "auto_parallel"
	DefaultCommitLimitKey    = "default_commit_limit"
	CloneURLTemplateKey      = "clone_url_template"
	ResultsFileKey           = "results_file"
	BatchTimeoutKey          = "batch_timeout"
)

const (
	defaultRepositoriesDirectoryConstant = "./repos"
	defaultRepositoriesFileConstant      = "repos.txt"
	defaultMaxRetriesConstant            = 3
	defaultRetryDelaySecondsConstant     = 2
	defaultMaxWorkersConstant            = 4
	defaultAutoParallelConstant          = true
	defaultCommitLimitConstant           = 50
	defaultResultsFileConstant           = "changes_results.json"
	defaultBatchTimeoutConstant          = 0
	cloneURLPlaceholderConstant          = "%s"
	atLeastOneTemplateConstant           = "%w: %s must be at least 1 (got %d)"
	nonNegativeTemplateConstant          = "%w: %s must not be negative (got %s)"
	requiredValueTemplateConstant        = "%w: %s must be set"
	placeholderTemplateConstant          = "%w: %s must contain %q (got %q)"
)

// ErrInvalidConfiguration wraps every configuration validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration controls how repositories are located, processed, and reported.
type Configuration struct {
	RepositoriesDirectory string        `mapstructure:"repos_dir"`
	RepositoriesFile      string        `mapstructure:"repos_file"`
	MaxRetries            int           `mapstructure:"max_retries"`
	RetryDelay            time.Duration `mapstructure:"retry_delay"`
	MaxWorkers            int           `mapstructure:"max_workers"`
	AutoParallel          bool          `mapstructure:"auto_parallel"`
	DefaultCommitLimit    int           `mapstructure:"default_commit_limit"`
	CloneURLTemplate      string        `mapstructure:"clone_url_template"`
	ResultsFile           string        `mapstructure:"results_file"`
	BatchTimeout          time.Duration `mapstructure:"batch_timeout"`
}

// DefaultConfigurationValues returns the default value of every workspace key.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		RepositoriesDirectoryKey: defaultRepositoriesDirectoryConstant,
		RepositoriesFileKey:      defaultRepositoriesFileConstant,
		MaxRetriesKey:            defaultMaxRetriesConstant,
		RetryDelayKey:            defaultRetryDelaySecondsConstant,
		MaxWorkersKey:            defaultMaxWorkersConstant,
		AutoParallelKey:          defaultAutoParallelConstant,
		DefaultCommitLimitKey:    defaultCommitLimitConstant,
		CloneURLTemplateKey:      gitclient.DefaultCloneURLTemplate,
		ResultsFileKey:           defaultResultsFileConstant,
		BatchTimeoutKey:          defaultBatchTimeoutConstant,
	}
}

// DefaultConfiguration returns the configuration used when nothing is configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		RepositoriesDirectory: defaultRepositoriesDirectoryConstant,
		RepositoriesFile:      defaultRepositoriesFileConstant,
		MaxRetries:            defaultMaxRetriesConstant,
		RetryDelay:            defaultRetryDelaySecondsConstant * time.Second,
		MaxWorkers:            defaultMaxWorkersConstant,
		AutoParallel:          defaultAutoParallelConstant,
		DefaultCommitLimit:    defaultCommitLimitConstant,
		CloneURLTemplate:      gitclient.DefaultCloneURLTemplate,
		ResultsFile:           defaultResultsFileConstant,
	}
}

// Sanitize trims values and expands home-relative paths.
func (configuration Configuration) Sanitize(resolver *pathutils.PathResolver) Configuration {
	if resolver == nil {
		resolver = pathutils.NewPathResolver(nil)
	}
	sanitized := configuration
	sanitized.RepositoriesDirectory = resolver.Resolve(configuration.RepositoriesDirectory)
	sanitized.RepositoriesFile = resolver.Resolve(configuration.RepositoriesFile)
	sanitized.ResultsFile = resolver.Resolve(configuration.ResultsFile)
	sanitized.CloneURLTemplate = strings.TrimSpace(configuration.CloneURLTemplate)
	return sanitized
}

// Validate reports the first setting that cannot drive a run.
func (configuration Configuration) Validate() error {
	switch {
	case len(configuration.RepositoriesDirectory) == 0:
		return fmt.Errorf(requiredValueTemplateConstant, ErrInvalidConfiguration, RepositoriesDirectoryKey)
	case len(configuration.RepositoriesFile) == 0:
		return fmt.Errorf(requiredValueTemplateConstant, ErrInvalidConfiguration, RepositoriesFileKey)
	case configuration.MaxRetries < 1:
		return fmt.Errorf(atLeastOneTemplateConstant, ErrInvalidConfiguration, MaxRetriesKey, configuration.MaxRetries)
	case configuration.MaxWorkers < 1:
		return fmt.Errorf(atLeastOneTemplateConstant, ErrInvalidConfiguration, MaxWorkersKey, configuration.MaxWorkers)
	case configuration.DefaultCommitLimit < 1:
		return fmt.Errorf(atLeastOneTemplateConstant, ErrInvalidConfiguration, DefaultCommitLimitKey, configuration.DefaultCommitLimit)
	case configuration.RetryDelay < 0:
		return fmt.Errorf(nonNegativeTemplateConstant, ErrInvalidConfiguration, RetryDelayKey, configuration.RetryDelay)
	case configuration.BatchTimeout < 0:
		return fmt.Errorf(nonNegativeTemplateConstant, ErrInvalidConfiguration, BatchTimeoutKey, configuration.BatchTimeout)
	case !strings.Contains(configuration.CloneURLTemplate, cloneURLPlaceholderConstant):
		return fmt.Errorf(placeholderTemplateConstant, ErrInvalidConfiguration, CloneURLTemplateKey, cloneURLPlaceholderConstant, configuration.CloneURLTemplate)
	default:
		return nil
	}
}
