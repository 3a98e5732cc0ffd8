package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/store"
	"github.com/mrz1836/forge/internal/tui"
)

// ResultsShowFlags holds flags for the results show command.
type ResultsShowFlags struct {
	// Reviews also prints the design and code review findings.
	Reviews bool
}

// AddResultsCommand adds the results command group to the root command.
func AddResultsCommand(root *cobra.Command, global *GlobalFlags) {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Browse saved pipeline results",
	}

	resultsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResultsList(cmd.Context(), cmd.OutOrStdout(), global)
		},
	})

	showFlags := &ResultsShowFlags{}
	showCmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one saved result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResultsShow(cmd.Context(), cmd.OutOrStdout(), global, showFlags, args[0])
		},
	}
	showCmd.Flags().BoolVar(&showFlags.Reviews, "reviews", false, "include review findings")
	resultsCmd.AddCommand(showCmd)

	root.AddCommand(resultsCmd)
}

func openResultStore() (*store.FileStore, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(home, GetLogger())
}

func runResultsList(ctx context.Context, w io.Writer, global *GlobalFlags) error {
	st, err := openResultStore()
	if err != nil {
		return err
	}
	results, err := st.List(ctx)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, global.Output)
	if global.Output == OutputJSON {
		return out.JSON(results)
	}
	if len(results) == 0 {
		out.Info("no saved results in " + st.Dir())
		return nil
	}
	tui.CheckNoColor()
	tui.RenderResultList(w, results)
	return nil
}

func runResultsShow(ctx context.Context, w io.Writer, global *GlobalFlags, flags *ResultsShowFlags, taskID string) error {
	st, err := openResultStore()
	if err != nil {
		return err
	}
	result, err := st.Get(ctx, taskID)
	if err != nil {
		return err
	}

	out := tui.NewOutput(w, global.Output)
	if global.Output == OutputJSON {
		return out.JSON(result)
	}

	tui.CheckNoColor()
	tui.RenderResult(w, result)
	if flags.Reviews {
		tui.RenderFindings(w, result.DesignReview)
		tui.RenderFindings(w, result.CodeReview)
	}
	tui.RenderPostmortem(w, result.Postmortem)
	return nil
}
