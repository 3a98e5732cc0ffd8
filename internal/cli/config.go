package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/errors"
	"github.com/mrz1836/forge/internal/tui"
)

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, global *GlobalFlags) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect FORGE configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display configuration after layering defaults, ~/.forge/config.yaml,
.forge/config.yaml and FORGE_* environment variables.

Text output is YAML; --output json prints JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), global)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a config file layered over the global config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigValidate(cmd.Context(), cmd.OutOrStdout(), global, args[0])
		},
	})

	root.AddCommand(configCmd)
}

func runConfigShow(ctx context.Context, w io.Writer, global *GlobalFlags) error {
	cfg, err := loadConfig(ctx, GetLogger(), nil)
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		return tui.NewJSONOutput(w).JSON(cfg)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return enc.Close()
}

func runConfigValidate(ctx context.Context, w io.Writer, global *GlobalFlags, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "failed to read config %s", path)
	}
	globalPath, err := config.GlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := config.LoadFromPaths(ctx, path, globalPath); err != nil {
		return err
	}
	tui.NewOutput(w, global.Output).Success(path + " is valid")
	return nil
}
