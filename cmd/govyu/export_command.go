package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"govyu/internal/config"
	"govyu/internal/export"
	"govyu/internal/logging"
	"govyu/internal/sheet"
	"govyu/internal/watch"
)

type exportTarget struct {
	dbPath string
	table  string
}

func (e *exportTarget) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.dbPath, "db", "", "SQLite database path (default from export.db_path)")
	cmd.Flags().StringVarP(&e.table, "table", "t", "", "Table name (default from export.table)")
}

func (e *exportTarget) resolve(cfg *config.Config) (string, string, error) {
	dbPath := cfg.Export.DBPath
	if strings.TrimSpace(e.dbPath) != "" {
		expanded, err := config.ExpandPath(strings.TrimSpace(e.dbPath))
		if err != nil {
			return "", "", fmt.Errorf("resolve --db: %w", err)
		}
		dbPath = expanded
	}
	table := cfg.Export.Table
	if strings.TrimSpace(e.table) != "" {
		table = strings.TrimSpace(e.table)
	}
	return dbPath, table, nil
}

// exportArchive loads path, merges columns, and replaces table in store.
func exportArchive(ctx context.Context, cc *commandContext, store *export.Store, path, table string, columns []string, opts sheet.MergeOptions) (export.Export, error) {
	s, err := cc.loadSheet(path)
	if err != nil {
		return export.Export{}, err
	}
	merged, err := s.Table(opts, columns...)
	if err != nil {
		return export.Export{}, err
	}
	return store.WriteTable(ctx, filepath.Base(path), table, merged)
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		target exportTarget
		prune  pruneFlags
	)

	cmd := &cobra.Command{
		Use:   "export FILE [COLUMN...]",
		Short: "Write the merged table of an archive into SQLite",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := prune.options(ctx)
			if err != nil {
				return err
			}
			dbPath, table, err := target.resolve(cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger("export")
			if err != nil {
				return err
			}

			store, err := export.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := exportArchive(ctx.withSession(cmd.Context()), ctx, store, args[0], table, args[1:], opts)
			if err != nil {
				return err
			}
			logger.Info("table exported",
				logging.String("db", dbPath),
				logging.String("table", rec.Table),
				logging.Int("rows", rec.Rows),
				logging.String("export_id", rec.ID),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to table %s in %s\n", rec.Rows, rec.Table, dbPath)
			return nil
		},
	}

	target.register(cmd)
	prune.register(cmd)
	return cmd
}

func newExportsCommand(ctx *commandContext) *cobra.Command {
	var target exportTarget

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List previous exports recorded in the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dbPath, _, err := target.resolve(cfg)
			if err != nil {
				return err
			}
			store, err := export.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Exports(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Source,
					rec.Table,
					strconv.Itoa(rec.Rows),
					rec.ID,
				})
			}
			headers := []string{"Exported", "Source", "Table", "Rows", "ID"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			return writeRows(cmd, ctx.outputFormat(), headers, rows, aligns, records)
		},
	}
	cmd.Flags().StringVar(&target.dbPath, "db", "", "SQLite database path (default from export.db_path)")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		target exportTarget
		prune  pruneFlags
	)

	cmd := &cobra.Command{
		Use:   "watch FILE [COLUMN...]",
		Short: "Re-export the merged table whenever the archive is saved",
		Long: "Export the merged table once, then watch FILE and export again every time it is\n" +
			"rewritten. Stops on SIGINT or SIGTERM.",
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
			dbPath, table, err := target.resolve(cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger("watch")
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(ctx.withSession(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := export.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			w, err := watch.NewWatcher(args[0], cfg.WatchDebounce())
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			run := func() error {
				rec, err := exportArchive(runCtx, ctx, store, args[0], table, args[1:], opts)
				if err != nil {
					return err
				}
				logger.Info("table exported",
					logging.String(logging.FieldFile, args[0]),
					logging.String("table", rec.Table),
					logging.Int("rows", rec.Rows),
				)
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to table %s\n", rec.Rows, rec.Table)
				return nil
			}
			if err := run(); err != nil {
				return err
			}
			return watchLoop(runCtx, w, logger, run)
		},
	}

	target.register(cmd)
	prune.register(cmd)
	return cmd
}

// watchLoop calls run for every change until ctx is cancelled. Failures after
// the first export are logged and the loop keeps going, since the archive may
// be mid-save.
func watchLoop(ctx context.Context, w *watch.Watcher, logger *slog.Logger, run func() error) error {
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := run(); err != nil {
				logging.WarnWithContext(logger, "re-export failed", "watch_export_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "the next save will retry"),
					logging.String(logging.FieldImpact, "database keeps the previous export"),
				)
			}
		case err, ok := <-w.Errors:
			if ok {
				logger.Warn("watcher error", logging.Error(err))
			}
		}
	}
}
