package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger shared by command handlers
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the logger created in the root PersistentPreRunE.
// Before that runs it returns a zero logger that discards everything.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "forge",
		Short: "FORGE - gated multi-stage code generation pipeline",
		Long: `FORGE turns requirements into a plan, a design, code, a test report and a
postmortem. Designs and code pass through multi-analyzer review gates with
bounded correction loops and optional human overrides.`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = InitLogger(flags.Verbose, flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)

	AddRunCommand(cmd, flags)
	AddBundleCommand(cmd, flags)
	AddResultsCommand(cmd, flags)
	AddConfigCommand(cmd, flags)
	addVersionCommand(cmd, flags, info)

	return cmd
}

func addVersionCommand(root *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Output == OutputJSON {
				return tui.NewJSONOutput(cmd.OutOrStdout()).JSON(withVersionDefaults(info))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "forge "+formatVersion(info))
			return err
		},
	})
}

func withVersionDefaults(info BuildInfo) BuildInfo {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

func formatVersion(info BuildInfo) string {
	info = withVersionDefaults(info)
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command. Errors are printed with a suggested action
// before being returned; map them to an exit status with ExitCodeForError.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // cobra passes ctx through cmd.Context()
	cmd := newRootCmd(flags, info)
	defer CloseLogFile()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := flags.Output
		if !IsValidOutputFormat(format) {
			format = OutputText
		}
		tui.NewOutput(os.Stderr, format).Error(err)
	}
	return err
}
