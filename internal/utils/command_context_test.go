package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcloner/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationAvailable)

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/reposcloner/config.yaml")
	executionContext = accessor.WithInvocationIdentifier(executionContext, "5a1c1ad8-43a5-4a38-8f9f-b4ed3e0b0a55")

	configurationFilePath, configurationAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationAvailable)
	require.Equal(testInstance, "/etc/reposcloner/config.yaml", configurationFilePath)

	invocationIdentifier, identifierAvailable := accessor.InvocationIdentifier(executionContext)
	require.True(testInstance, identifierAvailable)
	require.Equal(testInstance, "5a1c1ad8-43a5-4a38-8f9f-b4ed3e0b0a55", invocationIdentifier)

	emptyPathContext := accessor.WithConfigurationFilePath(context.Background(), "")
	_, configurationAvailable = accessor.ConfigurationFilePath(emptyPathContext)
	require.False(testInstance, configurationAvailable)
}
