package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"govyu/internal/logging"
	"govyu/internal/opf"
	"govyu/internal/sheet"
)

type pruneFlags struct {
	prune   bool
	noPrune bool
}

func (p *pruneFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&p.prune, "prune", false, "Drop intervals where no source column is active (default from merge.prune)")
	cmd.Flags().BoolVar(&p.noPrune, "no-prune", false, "Keep intervals where no source column is active")
	cmd.MarkFlagsMutuallyExclusive("prune", "no-prune")
}

func (p *pruneFlags) options(ctx *commandContext) (sheet.MergeOptions, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return sheet.MergeOptions{}, err
	}
	opts := sheet.MergeOptions{Prune: cfg.Merge.Prune}
	switch {
	case p.prune:
		opts.Prune = true
	case p.noPrune:
		opts.Prune = false
	}
	return opts, nil
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var (
		name  string
		save  bool
		prune pruneFlags
	)

	cmd := &cobra.Command{
		Use:   "merge FILE [COLUMN...]",
		Short: "Merge columns into one column of non-overlapping intervals",
		Long: "Merge the named columns (all columns when none are named) into a single column\n" +
			"whose cells tile the covered time range. Each merged cell carries, per source\n" +
			"column, the ordinal and code values of the cell active at its onset.\n" +
			"With --save the merged column is added to the archive.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := prune.options(ctx)
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger("merge")
			if err != nil {
				return err
			}
			path, columns := args[0], args[1:]
			s, err := ctx.loadSheet(path)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(name)
			if target == "" {
				target = cfg.Merge.Name
			}
			var merged *sheet.Column
			if save {
				merged, err = s.MergeColumns(target, opts, columns...)
			} else {
				var cols []*sheet.Column
				if cols, err = s.Lookup(columns...); err == nil {
					merged, err = sheet.Merge(target, cols, opts)
				}
			}
			if err != nil {
				return err
			}
			logger.Info("columns merged",
				logging.String(logging.FieldColumn, target),
				logging.Int("cells", merged.Len()),
				logging.Bool("prune", opts.Prune),
			)

			if save {
				saveOpts, err := ctx.saveOptions()
				if err != nil {
					return err
				}
				if err := opf.Save(ctx.withSession(cmd.Context()), path, s, saveOpts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved column %q (%d cells) to %s\n", target, merged.Len(), path)
			}
			return writeTable(cmd, ctx.outputFormat(), ctx.timeFormat(), sheet.NewTable(merged))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the merged column (default from merge.name)")
	cmd.Flags().BoolVar(&save, "save", false, "Add the merged column to the archive")
	prune.register(cmd)
	return cmd
}
