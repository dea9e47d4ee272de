package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "govyu",
		Short:         "Inspect, merge, and export Datavyu .opf spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format override (console, json)")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format (table, json, csv); default from output.format")
	pf.BoolVar(&flags.millis, "millis", false, "Print onset/offset as milliseconds")

	rootCmd.AddCommand(newColumnsCommand(ctx))
	rootCmd.AddCommand(newCellsCommand(ctx))
	rootCmd.AddCommand(newAtCommand(ctx))
	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newExportsCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
