package opf_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"govyu/internal/faults"
	"govyu/internal/logging"
	"govyu/internal/opf"
	"govyu/internal/sheet"
	"govyu/internal/testsupport"
)

func TestLoadNamesSheetAfterFile(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "visit 3.opf"), testsupport.SampleDB)
	doc, err := opf.Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Sheet.Name != "visit 3" {
		t.Fatalf("sheet name = %q", doc.Sheet.Name)
	}
	if doc.Sheet.Len() != 2 {
		t.Fatalf("expected two columns, got %d", doc.Sheet.Len())
	}
}

func TestLoadMissingDB(t *testing.T) {
	path := testsupport.WriteArchive(t, filepath.Join(t.TempDir(), "s.opf"), "",
		testsupport.Member{Name: "project", Data: "p"})
	if _, err := opf.LoadSheet(path, nil); !errors.Is(err, faults.ErrMissingMember) {
		t.Fatalf("expected missing member error, got %v", err)
	}
}

func TestSaveMergedColumn(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "s.opf"), testsupport.SampleDB,
		testsupport.Member{Name: "project", Data: "settings"})

	s, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.MergeColumns("both", sheet.MergeOptions{Prune: true}); err != nil {
		t.Fatal(err)
	}
	if err := opf.Save(context.Background(), path, s, opf.SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.ColumnNames(); !slices.Equal(got, []string{"speaker", "gaze", "both"}) {
		t.Fatalf("columns after save = %v", got)
	}
	if !equalSheets(s, reloaded) {
		t.Fatal("saved sheet differs from reloaded sheet")
	}
	project, err := opf.ReadMember(path, "project")
	if err != nil || string(project) != "settings" {
		t.Fatalf("project member lost: %q %v", project, err)
	}
}

func TestSaveMergedColumnWithUnicodeName(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "s.opf"), testsupport.SampleDB)
	s, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.MergeColumns("Blick_ö", sheet.MergeOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := opf.Save(context.Background(), path, s, opf.SaveOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	doc, err := opf.Load(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Skipped) != 0 {
		t.Fatalf("reload skipped lines: %+v", doc.Skipped)
	}
	if !equalSheets(s, doc.Sheet) {
		t.Fatal("saved sheet differs from reloaded sheet")
	}
}

func TestSaveRejectsUnencodableColumnName(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "s.opf"), testsupport.SampleDB)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	gaze, _ := s.Column("gaze")
	gaze.Name = "A merged"
	if err := opf.Save(context.Background(), path, s, opf.SaveOptions{}); !errors.Is(err, faults.ErrStructure) {
		t.Fatalf("expected ErrStructure, got %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("archive changed after a rejected save")
	}
}

func TestSaveSelectedColumnsWithBackup(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "s.opf"), testsupport.SampleDB)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	s, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := opf.Save(context.Background(), path, s, opf.SaveOptions{Backup: true}, "gaze"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	backup, err := os.ReadFile(opf.BackupPath(path))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != string(before) {
		t.Fatal("backup does not match the original archive")
	}
	reloaded, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.ColumnNames(); !slices.Equal(got, []string{"gaze"}) {
		t.Fatalf("columns after selective save = %v", got)
	}
}

func TestSaveBackupOfNewArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.opf")
	s := sheet.NewSpreadsheet("new")
	col, err := s.NewColumn("c", "a")
	if err != nil {
		t.Fatal(err)
	}
	col.NewCell(1, 0, 10, "v")

	if err := opf.Save(context.Background(), path, s, opf.SaveOptions{Backup: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !opf.Exists(path) {
		t.Fatal("expected archive to be created")
	}
	if opf.Exists(opf.BackupPath(path)) {
		t.Fatal("no backup expected for a new archive")
	}
}

func TestSaveStampsSessionFromContext(t *testing.T) {
	path := testsupport.WriteOPF(t, filepath.Join(t.TempDir(), "s.opf"), testsupport.SampleDB)
	s, err := opf.LoadSheet(path, nil)
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logging.WithSessionID(context.Background(), "sess-42")
	if err := opf.Save(ctx, path, s, opf.SaveOptions{Logger: logger}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte(`"session_id":"sess-42"`)) {
		t.Fatalf("expected session id in log output, got %s", out)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"msg":"archive saved"`)) {
		t.Fatalf("expected save log line, got %s", out)
	}
}
