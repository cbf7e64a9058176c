package flags

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "default_true", arguments: []string{}, expectedValue: true, expectedChanged: false},
		{name: "implicit_true", arguments: []string{"--parallel"}, expectedValue: true, expectedChanged: true},
		{name: "explicit_no", arguments: []string{"--parallel", "no"}, expectedValue: false, expectedChanged: true},
		{name: "explicit_uppercase_yes", arguments: []string{"--parallel", "YES"}, expectedValue: true, expectedChanged: true},
		{name: "inline_off", arguments: []string{"--parallel=off"}, expectedValue: false, expectedChanged: true},
		{name: "shorthand_no", arguments: []string{"-p", "n"}, expectedValue: false, expectedChanged: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "parallel", "p", true, "Run operations in parallel")

			require.NoError(testInstance, command.ParseFlags(NormalizeToggleArguments(testCase.arguments)))
			require.Equal(testInstance, testCase.expectedValue, toggleValue)

			flag := command.Flags().Lookup("parallel")
			require.NotNil(testInstance, flag)
			require.Equal(testInstance, testCase.expectedChanged, flag.Changed)
			require.Contains(testInstance, flag.Usage, "<YES|no>")
		})
	}
}

func TestNormalizeToggleArgumentsLeavesPositionalArguments(testInstance *testing.T) {
	command := &cobra.Command{}
	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "parallel", "", false, "")

	normalized := NormalizeToggleArguments([]string{"--parallel", "octo/alpha", "--", "--parallel", "no"})
	require.Equal(testInstance, []string{"--parallel", "octo/alpha", "--", "--parallel", "no"}, normalized)
}

func TestAddToggleFlagRejectsInvalidValues(testInstance *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "parallel", "", false, "")

	require.Error(testInstance, command.ParseFlags([]string{"--parallel=maybe"}))
	require.False(testInstance, toggleValue)
}
