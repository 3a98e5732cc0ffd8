package cli

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/forge/internal/errors"
)

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat("text"))
	assert.True(t, IsValidOutputFormat("json"))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestAddGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "forge"}
	flags := &GlobalFlags{}
	AddGlobalFlags(cmd, flags)

	require.NoError(t, cmd.ParseFlags([]string{"-v"}))
	assert.Equal(t, OutputText, flags.Output)
	assert.True(t, flags.Verbose)
	assert.False(t, flags.Quiet)
}

func TestBindGlobalFlags_EnvOverride(t *testing.T) {
	t.Setenv("FORGE_OUTPUT", "json")

	cmd := &cobra.Command{Use: "forge"}
	AddGlobalFlags(cmd, &GlobalFlags{})

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, "json", v.GetString("output"))
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", fmt.Errorf("boom"), ExitError}, //nolint:err113 // test error
		{"gate failed", &errors.QualityGateError{Gate: "code"}, ExitGateFailed},
		{"invalid format", fmt.Errorf("%w: xml", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"invalid task id", errors.ErrInvalidTaskID, ExitInvalidInput},
		{"invalid scenario", errors.Wrap(errors.ErrScenarioInvalid, "load"), ExitInvalidInput},
		{"unknown flag", fmt.Errorf("unknown flag: --nope"), ExitInvalidInput},           //nolint:err113 // cobra-shaped error
		{"missing arg", fmt.Errorf("accepts 1 arg(s), received 0"), ExitInvalidInput}, //nolint:err113 // cobra-shaped error
		{"worker failed", &errors.WorkerError{Stage: "design", Err: errors.ErrScenarioExhausted}, ExitError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}
