// Package cli provides the command-line interface for forge.
package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
	// ExitGateFailed indicates the run ended on a failed quality gate.
	ExitGateFailed = 3
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = tui.FormatText
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = tui.FormatJSON
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
}

// AddGlobalFlags adds persistent flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper so FORGE_OUTPUT, FORGE_VERBOSE
// and FORGE_QUIET can set them.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// ExitCodeForError maps an error to a process exit code.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case stderrors.Is(err, errors.ErrQualityGateFailed):
		return ExitGateFailed
	case stderrors.Is(err, errors.ErrInvalidOutputFormat),
		stderrors.Is(err, errors.ErrInvalidTaskID),
		stderrors.Is(err, errors.ErrScenarioInvalid):
		return ExitInvalidInput
	case isInvalidInputError(err.Error()):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// isInvalidInputError catches cobra's flag and argument validation errors.
func isInvalidInputError(errMsg string) bool {
	invalidInputPatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
		"accepts 1 arg",
	}

	for _, pattern := range invalidInputPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
