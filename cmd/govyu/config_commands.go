package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"govyu/internal/config"
	"govyu/internal/faults"
	"govyu/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init [PATH]",
		Short:       "Create a sample configuration file",
		Long:        "Write the annotated sample configuration to PATH, or to ~/.config/govyu/config.toml.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(args)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func initTarget(args []string) (string, error) {
	if len(args) == 1 {
		if arg := strings.TrimSpace(args[0]); arg != "" {
			return config.ExpandPath(arg)
		}
	}
	return config.DefaultConfigPath()
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if ctx.outputFormat() == config.FormatJSON {
				return writeJSON(cmd, cfg)
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", ctx.configPath)
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [ARCHIVE...]",
		Short: "Validate configuration and check that archives can be rewritten",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return faults.Wrap(faults.ErrIO, "config", "ensure directories", "create configured directories", err)
			}

			results := preflight.RunAll(cfg, args...)
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{r.Name, status, r.Detail})
			}

			out := cmd.OutOrStdout()
			format := ctx.outputFormat()
			if format == config.FormatTable {
				fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			}
			if err := writeRows(cmd, format, []string{"CHECK", "STATUS", "DETAIL"}, rows, nil, results); err != nil {
				return err
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return faults.Wrap(faults.ErrIO, "config", "validate", fmt.Sprintf("%d preflight check(s) failed", len(failed)), nil)
			}
			if format == config.FormatTable {
				fmt.Fprintln(out, "Configuration valid")
			}
			return nil
		},
	}
}
