package preflight

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"govyu/internal/opf"
)

// CheckDirectoryAccess verifies that path is an existing directory the
// current user can read, write, and traverse.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckArchive verifies that path is a readable zip archive carrying a
// spreadsheet member and that its directory accepts the temp file a rewrite
// needs.
func CheckArchive(name, path string) Result {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	found := false
	for _, f := range zr.File {
		if f.Name == opf.DBMember {
			found = true
			break
		}
	}
	_ = zr.Close()
	if !found {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: missing %q member)", path, opf.DBMember)}
	}

	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: directory not writable)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (rewrite ok)", path)}
}
