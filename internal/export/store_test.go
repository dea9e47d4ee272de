package export_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"govyu/internal/export"
	"govyu/internal/faults"
	"govyu/internal/opf"
	"govyu/internal/sheet"
	"govyu/internal/testsupport"
)

func sampleTable(t *testing.T) *sheet.Table {
	t.Helper()
	doc, err := opf.Decode(strings.NewReader(testsupport.SampleDB), nil)
	if err != nil {
		t.Fatal(err)
	}
	table, err := doc.Sheet.Table(sheet.MergeOptions{Prune: true})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestWriteTableCreatesRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	table := sampleTable(t)

	rec, err := store.WriteTable(ctx, "session.opf", "Visit 3", table)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if rec.Table != "visit_3" || rec.Rows != table.Len() || rec.ID == "" {
		t.Fatalf("unexpected record %+v", rec)
	}

	count, err := store.RowCount(ctx, "Visit 3")
	if err != nil {
		t.Fatalf("RowCount: %v", err)
	}
	if count != table.Len() {
		t.Fatalf("row count = %d, want %d", count, table.Len())
	}

	db, err := sql.Open("sqlite", cfg.Export.DBPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var (
		onset, offset int64
		who, target   string
	)
	err = db.QueryRow(`SELECT onset, "offset", speaker_who, gaze_target FROM visit_3 WHERE ordinal = 2`).
		Scan(&onset, &offset, &who, &target)
	if err != nil {
		t.Fatalf("query exported row: %v", err)
	}
	if onset != 1000 || offset != 1999 || who != "mom" || target != "toy" {
		t.Fatalf("unexpected row: %d %d %q %q", onset, offset, who, target)
	}
}

func TestWriteTableReplacesAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	table := sampleTable(t)

	if _, err := store.WriteTable(ctx, "a.opf", "merged", table); err != nil {
		t.Fatal(err)
	}
	if _, err := store.WriteTable(ctx, "a.opf", "merged", table); err != nil {
		t.Fatal(err)
	}

	count, err := store.RowCount(ctx, "merged")
	if err != nil {
		t.Fatal(err)
	}
	if count != table.Len() {
		t.Fatalf("table should be replaced, got %d rows", count)
	}

	exports, err := store.Exports(ctx)
	if err != nil {
		t.Fatalf("Exports: %v", err)
	}
	if len(exports) != 2 {
		t.Fatalf("expected two bookkeeping rows, got %d", len(exports))
	}
	if exports[0].ID == exports[1].ID {
		t.Fatal("export ids should be unique")
	}
	if exports[1].Source != "a.opf" || exports[1].Codes != len(table.Codes()) {
		t.Fatalf("unexpected record %+v", exports[1])
	}
}

func TestWriteTableRejectsReservedNames(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	for _, name := range []string{"exports", "Exports", "sqlite_master"} {
		_, err := store.WriteTable(context.Background(), "a.opf", name, sampleTable(t))
		if !errors.Is(err, faults.ErrStructure) {
			t.Fatalf("%s: expected structural error, got %v", name, err)
		}
	}
}

func TestReopenKeepsExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.db")
	store, err := export.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.WriteTable(context.Background(), "a.opf", "t", sampleTable(t)); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := export.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	exports, err := reopened.Exports(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(exports) != 1 || exports[0].Table != "t" {
		t.Fatalf("unexpected exports after reopen: %+v", exports)
	}
}

func TestColumnNames(t *testing.T) {
	got := export.ColumnNames([]string{"speaker_ordinal", "Speaker Who", "onset"})
	want := []string{"ordinal", "onset", "offset", "speaker_ordinal", "speaker_who", "onset_2"}
	if !slices.Equal(got, want) {
		t.Fatalf("ColumnNames = %v, want %v", got, want)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := export.Open(path); !errors.Is(err, export.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
