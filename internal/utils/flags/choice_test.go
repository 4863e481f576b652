package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "local",
			choices:        []string{"local", "user"},
			description:    "Write configuration to LOCAL or user scope.",
			expectedOutput: "`<LOCAL|user>` Write configuration to LOCAL or user scope.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "user",
			choices:        []string{"local", "user"},
			description:    "Persist configuration for the selected scope.",
			expectedOutput: "`<local|USER>` Persist configuration for the selected scope.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			description:    "",
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", "alpha", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "primary",
			choices:        []string{" primary ", " secondary "},
			description:    "Pick a palette.",
			expectedOutput: "`<PRIMARY|secondary>` Pick a palette.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(t, testCase.expectedOutput, actual)
		})
	}
}

func TestAddChoiceFlag(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectError   bool
		expectedValue string
	}{
		{name: "Default", arguments: []string{}, expectedValue: "structured"},
		{name: "ExplicitChoice", arguments: []string{"--format=console"}, expectedValue: "console"},
		{name: "CaseInsensitive", arguments: []string{"--format", "CONSOLE"}, expectedValue: "console"},
		{name: "Rejected", arguments: []string{"--format=xml"}, expectError: true, expectedValue: "structured"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}
			AddChoiceFlag(command.Flags(), "format", "structured", []string{"structured", "console"}, "Log encoding.")

			parseError := command.ParseFlags(testCase.arguments)
			if testCase.expectError {
				require.Error(t, parseError)
			} else {
				require.NoError(t, parseError)
			}

			actualValue, getError := command.Flags().GetString("format")
			require.NoError(t, getError)
			require.Equal(t, testCase.expectedValue, actualValue)

			flag := command.Flags().Lookup("format")
			require.NotNil(t, flag)
			require.Equal(t, "`<STRUCTURED|console>` Log encoding.", flag.Usage)
		})
	}
}
