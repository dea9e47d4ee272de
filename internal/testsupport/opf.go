package testsupport

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// SampleDB is a two-column db member: "speaker" has two adjacent cells and
// "gaze" has one cell that straddles the boundary between them.
const SampleDB = `#4
speaker (MATRIX,false,)-who|NOMINAL,volume|NOMINAL
00:00:00:000,00:00:01:999,(mom,loud)
00:00:02:000,00:00:05:000,(child,soft)
gaze (MATRIX,false,)-target|NOMINAL
00:00:01:000,00:00:03:000,(toy)
`

// Member is one archive entry for WriteArchive.
type Member struct {
	Name string
	Data string
}

// WriteOPF creates an .opf archive at path whose db member is db. Extra
// members are written after db in the given order.
func WriteOPF(t testing.TB, path, db string, extra ...Member) string {
	t.Helper()
	return WriteArchive(t, path, "", append([]Member{{Name: "db", Data: db}}, extra...)...)
}

// WriteArchive creates a zip archive at path with the members in order and an
// optional archive comment.
func WriteArchive(t testing.TB, path, comment string, members ...Member) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			t.Fatalf("set comment: %v", err)
		}
	}
	for _, m := range members {
		w, err := zw.Create(m.Name)
		if err != nil {
			t.Fatalf("create member %s: %v", m.Name, err)
		}
		if _, err := w.Write([]byte(m.Data)); err != nil {
			t.Fatalf("write member %s: %v", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive %s: %v", path, err)
	}
	return path
}

// ReadArchive returns the member names in order, their contents, and the
// archive comment.
func ReadArchive(t testing.TB, path string) ([]string, map[string]string, string) {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive %s: %v", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	contents := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", f.Name, err)
		}
		data := make([]byte, f.UncompressedSize64)
		if _, err := io.ReadFull(rc, data); err != nil {
			rc.Close()
			t.Fatalf("read member %s: %v", f.Name, err)
		}
		rc.Close()
		names = append(names, f.Name)
		contents[f.Name] = string(data)
	}
	return names, contents, zr.Comment
}
