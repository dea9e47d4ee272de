package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"govyu/internal/faults"
	"govyu/internal/sheet"
	"govyu/internal/textutil"
)

// Export is one row of the exports bookkeeping table.
type Export struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Table     string    `json:"table"`
	Rows      int       `json:"rows"`
	Codes     int       `json:"codes"`
	CreatedAt time.Time `json:"created_at"`
}

// createdLayout has fixed width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

var fixedColumns = []string{sheet.HeaderOrdinal, sheet.HeaderOnset, sheet.HeaderOffset}

// TableName returns the SQLite table name used for name.
func TableName(name string) string {
	return textutil.SanitizeToken(name)
}

// ColumnNames returns the SQLite column names used for a table with the given
// codes: the fixed ordinal, onset, and offset columns followed by one
// sanitized, de-duplicated name per code.
func ColumnNames(codes []string) []string {
	out := make([]string, 0, len(fixedColumns)+len(codes))
	out = append(out, fixedColumns...)
	return append(out, textutil.UniqueTokens(codes, fixedColumns...)...)
}

// WriteTable replaces the table called name with the rows of table and
// records the export. The replacement happens in a single transaction.
func (s *Store) WriteTable(ctx context.Context, source, name string, table *sheet.Table) (Export, error) {
	ctx = ensureContext(ctx)
	tableName := TableName(name)
	if _, reserved := reservedTables[tableName]; reserved || strings.HasPrefix(tableName, "sqlite_") {
		return Export{}, faults.Wrap(faults.ErrStructure, "export", "write table",
			fmt.Sprintf("table name %q is reserved", tableName), nil)
	}

	record := Export{
		ID:        uuid.NewString(),
		Source:    source,
		Table:     tableName,
		Rows:      table.Len(),
		Codes:     len(table.Codes()),
		CreatedAt: time.Now().UTC(),
	}
	columns := ColumnNames(table.Codes())

	err := retryOnBusy(ctx, func() error {
		return s.replaceTable(ctx, tableName, columns, table, record)
	})
	if err != nil {
		return Export{}, fmt.Errorf("export table %s: %w", tableName, err)
	}
	return record, nil
}

func (s *Store) replaceTable(ctx context.Context, tableName string, columns []string, table *sheet.Table, record Export) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quoted := textutil.QuoteIdentifier(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(quoted, columns)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(quoted, columns))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for _, row := range table.Rows() {
		args[0] = row.Ordinal
		args[1] = row.Onset.Millis()
		args[2] = row.Offset.Millis()
		for i, value := range row.Values {
			args[len(fixedColumns)+i] = value
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", row.Ordinal, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO exports (id, source, table_name, row_count, code_count, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		record.ID, record.Source, record.Table, record.Rows, record.Codes, record.CreatedAt.Format(createdLayout),
	); err != nil {
		return fmt.Errorf("record export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}

func createTableSQL(quotedTable string, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quotedTable)
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(textutil.QuoteIdentifier(col))
		switch i {
		case 0:
			b.WriteString(" INTEGER PRIMARY KEY")
		case 1, 2:
			b.WriteString(" INTEGER NOT NULL")
		default:
			b.WriteString(" TEXT NOT NULL DEFAULT ''")
		}
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(quotedTable string, columns []string) string {
	quotedCols := make([]string, len(columns))
	for i, col := range columns {
		quotedCols[i] = textutil.QuoteIdentifier(col)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(quotedCols, ", "), makePlaceholders(len(columns)))
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// Exports lists the bookkeeping rows, oldest first.
func (s *Store) Exports(ctx context.Context) ([]Export, error) {
	ctx = ensureContext(ctx)
	var out []Export
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			"SELECT id, source, table_name, row_count, code_count, created_at FROM exports ORDER BY created_at, rowid")
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			rec, err := scanExport(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	return out, nil
}

func scanExport(scanner interface{ Scan(dest ...any) error }) (Export, error) {
	var (
		rec     Export
		created string
	)
	if err := scanner.Scan(&rec.ID, &rec.Source, &rec.Table, &rec.Rows, &rec.Codes, &created); err != nil {
		return Export{}, err
	}
	ts, err := time.Parse(createdLayout, created)
	if err != nil {
		return Export{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}

// RowCount returns the number of rows currently stored in the table for name.
func (s *Store) RowCount(ctx context.Context, name string) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM "+textutil.QuoteIdentifier(TableName(name))).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}
