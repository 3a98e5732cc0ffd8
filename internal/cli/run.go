package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/pipeline"
	"github.com/mrz1836/forge/internal/scenario"
	"github.com/mrz1836/forge/internal/signal"
	"github.com/mrz1836/forge/internal/store"
	"github.com/mrz1836/forge/internal/tui"
)

// RunFlags holds flags for the run command.
type RunFlags struct {
	Scenario     string
	TaskID       string
	ApproveGates bool
	Interactive  bool
	Save         bool
	Mode         string
	Concurrency  int
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(root *cobra.Command, global *GlobalFlags) {
	flags := &RunFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline against a scenario file",
		Long: `Run plan, design, code, test and postmortem for a scenario.

A scenario scripts every worker and analyzer response, so the review gates,
correction loops and staged generation run exactly as they would against a
model backend.

Failed gates are resolved, in order of precedence, by --approve-gates, by an
interactive prompt with --interactive, or by the scenario's approvals map.

Examples:
  forge run --scenario examples/todo.yaml
  forge run --scenario todo.yaml --interactive --save
  forge run --scenario todo.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), global, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Scenario, "scenario", "s", "", "scenario YAML file")
	cmd.Flags().StringVar(&flags.TaskID, "task-id", "", "task ID (overrides the scenario's)")
	cmd.Flags().BoolVar(&flags.ApproveGates, "approve-gates", false, "override every failed gate")
	cmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "ask before overriding a failed gate")
	cmd.Flags().BoolVar(&flags.Save, "save", false, "persist the result under $FORGE_HOME/results")
	cmd.Flags().StringVar(&flags.Mode, "mode", "", "generation mode when the scenario scripts both manifest and bundle_text (staged|legacy)")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0, "staged generation concurrency override")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.MarkFlagsMutuallyExclusive("approve-gates", "interactive")

	root.AddCommand(cmd)
}

func runPipeline(ctx context.Context, stdout, stderr io.Writer, global *GlobalFlags, flags *RunFlags) error {
	logger := GetLogger()
	out := tui.NewOutput(stdout, global.Output)

	cfg, err := loadConfig(ctx, logger, &config.Config{
		Generation: config.GenerationConfig{Mode: flags.Mode, Concurrency: flags.Concurrency},
	})
	if err != nil {
		return err
	}
	logger = applyConfigLevel(logger, global, cfg)

	s, err := scenario.Load(flags.Scenario)
	if err != nil {
		return err
	}
	if flags.TaskID != "" {
		s.TaskID = flags.TaskID
	}

	var resultStore *store.FileStore
	if flags.Save {
		if s.TaskID != "" {
			if err := store.ValidateTaskID(s.TaskID); err != nil {
				return err
			}
		}
		home, err := config.HomeDir()
		if err != nil {
			return err
		}
		if resultStore, err = store.NewFileStore(home, logger); err != nil {
			return err
		}
	}

	workers, err := s.Build(generationConfig(cfg), logger, nil)
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(cfg, workers, logger)
	if err != nil {
		return err
	}

	approver, prompt := selectApprover(s, flags, stderr, logger)

	h := signal.NewHandler(ctx)
	defer h.Stop()

	logger.Info().
		Str("scenario", s.Name).
		Str("task_id", s.TaskID).
		Str("generation_mode", string(s.ResolveGenerationMode(generationConfig(cfg).Mode))).
		Msg("starting pipeline run")

	result, runErr := orch.Execute(h.Context(), s.Request(), approver)

	if h.WasInterrupted() {
		out.Warning("run interrupted")
	}
	if prompt != nil {
		if perr := prompt.Err(); perr != nil {
			out.Warning("gate prompt unavailable: " + perr.Error())
		}
	}

	if resultStore != nil && result != nil {
		// The run context may already be canceled; the save should still happen.
		if err := resultStore.Save(context.WithoutCancel(ctx), result); err != nil {
			logger.Error().Err(err).Str("task_id", result.TaskID).Msg("failed to save result")
			if runErr == nil {
				runErr = err
			}
		} else {
			out.Info("saved result " + result.TaskID)
		}
	}

	if err := renderRunResult(stdout, out, global.Output, result); err != nil {
		return err
	}
	return runErr
}

// selectApprover returns the gate approver for the run and the interactive
// prompt when one is used.
func selectApprover(s *scenario.Scenario, flags *RunFlags, w io.Writer, logger zerolog.Logger) (pipeline.Approver, *tui.GatePrompt) {
	switch {
	case flags.ApproveGates:
		return func(string, *domain.ReviewReport) bool { return true }, nil
	case flags.Interactive:
		p := tui.NewGatePrompt(w, logger)
		return p.Approve, p
	default:
		return s.Approver(), nil
	}
}

func renderRunResult(w io.Writer, out tui.Output, format string, result *domain.PipelineExecutionResult) error {
	if result == nil {
		return nil
	}
	if format == OutputJSON {
		return out.JSON(result)
	}
	tui.CheckNoColor()
	tui.RenderResult(w, result)
	return nil
}
