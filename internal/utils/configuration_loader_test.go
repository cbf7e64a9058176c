package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcloner/internal/utils"
)

const (
	testEnvironmentPrefixConstant                  = "TESTREPOCLONER"
	testConfigurationNameConstant                  = "config"
	testConfigurationTypeConstant                  = "yaml"
	testConfigFileNameConstant                     = "config.yaml"
	configurationLoaderSubtestNameTemplateConstant = "%d_%s"
	testLogLevelKeyConstant                        = "log_level"
	testRetryDelayKeyConstant                      = "retry_delay"
	testMaxWorkersKeyConstant                      = "max_workers"
)

type configurationFixture struct {
	LogLevel   string        `mapstructure:"log_level"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	MaxWorkers int           `mapstructure:"max_workers"`
}

func TestConfigurationLoaderPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		embeddedContent       string
		fileContent           string
		environmentValues     map[string]string
		expectedConfiguration configurationFixture
	}{
		{
			name:                  "defaults_are_applied",
			expectedConfiguration: configurationFixture{LogLevel: "INFO", RetryDelay: 2 * time.Second, MaxWorkers: 4},
		},
		{
			name:                  "embedded_configuration_overrides_defaults",
			embeddedContent:       "log_level: DEBUG\n",
			expectedConfiguration: configurationFixture{LogLevel: "DEBUG", RetryDelay: 2 * time.Second, MaxWorkers: 4},
		},
		{
			name:                  "file_overrides_embedded_configuration",
			embeddedContent:       "log_level: DEBUG\n",
			fileContent:           "log_level: WARNING\nretry_delay: 1500ms\nmax_workers: 8\n",
			expectedConfiguration: configurationFixture{LogLevel: "WARNING", RetryDelay: 1500 * time.Millisecond, MaxWorkers: 8},
		},
		{
			name:        "environment_overrides_file",
			fileContent: "log_level: WARNING\nretry_delay: 1\n",
			environmentValues: map[string]string{
				"TESTREPOCLONER_LOG_LEVEL":   "ERROR",
				"TESTREPOCLONER_RETRY_DELAY": "0.5",
			},
			expectedConfiguration: configurationFixture{LogLevel: "ERROR", RetryDelay: 500 * time.Millisecond, MaxWorkers: 4},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			tempDirectory := testInstance.TempDir()
			configurationFilePath := ""
			if len(testCase.fileContent) > 0 {
				configurationFilePath = filepath.Join(tempDirectory, testConfigFileNameConstant)
				require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.fileContent), 0o600))
			}
			for environmentName, environmentValue := range testCase.environmentValues {
				testInstance.Setenv(environmentName, environmentValue)
			}

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{tempDirectory})
			configurationLoader.SetEmbeddedConfiguration([]byte(testCase.embeddedContent), testConfigurationTypeConstant)

			defaultValues := map[string]any{
				testLogLevelKeyConstant:   "INFO",
				testRetryDelayKeyConstant: 2,
				testMaxWorkersKeyConstant: 4,
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedConfiguration, loadedConfiguration)
			require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderSearchesWorkingDirectory(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(searchDirectory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte("max_workers: 2\n"), 0o600))

	configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})

	loadedConfiguration := configurationFixture{}
	metadata, loadError := configurationLoader.LoadConfiguration("", map[string]any{testMaxWorkersKeyConstant: 4}, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, loadedConfiguration.MaxWorkers)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderRejectsInvalidValues(testInstance *testing.T) {
	testCases := []struct {
		name        string
		fileContent string
	}{
		{name: "malformed_yaml", fileContent: "max_workers: [\n"},
		{name: "invalid_duration", fileContent: "retry_delay: soon\n"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			configurationFilePath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
			require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testCase.fileContent), 0o600))

			configurationLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
			_, loadError := configurationLoader.LoadConfiguration(configurationFilePath, map[string]any{testRetryDelayKeyConstant: 2}, &configurationFixture{})
			require.Error(testInstance, loadError)
		})
	}
}
