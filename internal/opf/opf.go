package opf

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"govyu/internal/faults"
	"govyu/internal/fileutil"
	"govyu/internal/logging"
	"govyu/internal/sheet"
)

// Load reads the archive at path and decodes its db member. The spreadsheet is
// named after the file without its extension.
func Load(path string, logger *slog.Logger) (*Document, error) {
	logger = logging.NewComponentLogger(logger, "opf").With(logging.String(logging.FieldFile, path))
	data, err := ReadMember(path, DBMember)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(bytes.NewReader(data), logger)
	if err != nil {
		return nil, err
	}
	doc.Sheet.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	logger.Info("archive loaded",
		logging.Int("columns", doc.Sheet.Len()),
		logging.Int("skipped_lines", len(doc.Skipped)),
		logging.Int("arity_mismatches", doc.ArityMismatches),
		logging.Int("clamped_offsets", doc.ClampedOffsets),
	)
	return doc, nil
}

// LoadSheet is Load for callers that only need the spreadsheet.
func LoadSheet(path string, logger *slog.Logger) (*sheet.Spreadsheet, error) {
	doc, err := Load(path, logger)
	if err != nil {
		return nil, err
	}
	return doc.Sheet, nil
}

// SaveOptions tunes Save.
type SaveOptions struct {
	// Backup copies the current archive to BackupPath(path) before rewriting.
	Backup      bool
	LockTimeout time.Duration
	Logger      *slog.Logger
}

// BackupPath returns the backup location used by Save for path.
func BackupPath(path string) string {
	return path + ".bak"
}

// Save writes the named columns of s (all columns when names is empty) into
// the db member of the archive at path, keeping every other member. A session
// id carried by ctx is added to every log line.
func Save(ctx context.Context, path string, s *sheet.Spreadsheet, opts SaveOptions, names ...string) error {
	opts.Logger = logging.WithContext(ctx, opts.Logger)
	logger := logging.NewComponentLogger(opts.Logger, "opf").With(logging.String(logging.FieldFile, path))
	data, err := Marshal(s, names...)
	if err != nil {
		return err
	}

	if opts.Backup {
		backup := BackupPath(path)
		if err := fileutil.CopyFileVerified(path, backup); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return faults.Wrap(faults.ErrIO, "opf", "backup", backup, err)
			}
		} else {
			logger.Info("archive backed up", logging.String("backup", backup))
		}
	}

	if err := RewriteMember(ctx, path, DBMember, data, RewriteOptions{
		LockTimeout: opts.LockTimeout,
		Logger:      opts.Logger,
	}); err != nil {
		logging.ErrorWithContext(logger, "archive save failed", "opf_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the archive on disk was not modified"),
		)
		return err
	}
	logger.Info("archive saved", logging.Int("bytes", len(data)))
	return nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
