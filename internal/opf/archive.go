package opf

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"govyu/internal/faults"
	"govyu/internal/logging"
)

// DBMember is the archive member holding the spreadsheet lines.
const DBMember = "db"

const lockRetryDelay = 50 * time.Millisecond

// RewriteOptions tunes RewriteMember.
type RewriteOptions struct {
	// LockTimeout bounds the wait for another writer's lock. Zero tries once.
	LockTimeout time.Duration
	Logger      *slog.Logger
}

func openArchive(path string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
			return nil, faults.Wrap(faults.ErrFormat, "opf", "open archive", path, err)
		}
		return nil, faults.Wrap(faults.ErrIO, "opf", "open archive", path, err)
	}
	return zr, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, faults.Wrap(faults.ErrFormat, "opf", "read member", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, faults.Wrap(faults.ErrFormat, "opf", "read member", f.Name, err)
	}
	return data, nil
}

// ReadMember returns the contents of one archive member.
func ReadMember(path, name string) ([]byte, error) {
	zr, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == name {
			return readFile(f)
		}
	}
	return nil, faults.Wrap(faults.ErrMissingMember, "opf", "read member",
		fmt.Sprintf("%s has no %q member", path, name), nil)
}

// Members returns every member of the archive keyed by name.
func Members(path string) (map[string][]byte, error) {
	zr, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	members := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		data, err := readFile(f)
		if err != nil {
			return nil, err
		}
		members[f.Name] = data
	}
	return members, nil
}

// RewriteMember replaces the named member of the archive at path with data.
// All other members keep their order and bytes, the archive comment is kept,
// and the member is appended when absent. A missing archive is created. The
// new archive is written to a temp file in the same directory and renamed
// over path; on failure path is left untouched.
func RewriteMember(ctx context.Context, path, name string, data []byte, opts RewriteOptions) error {
	logger := logging.NewComponentLogger(opts.Logger, "opf").With(logging.String(logging.FieldFile, path))
	dir := filepath.Dir(path)
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", fmt.Sprintf("directory %s is not writable", dir), err)
	}

	lock := flock.New(path + ".lock")
	if err := acquire(ctx, lock, opts.LockTimeout); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release archive lock failed", logging.Error(err))
		}
	}()

	var src *zip.ReadCloser
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
		if src, err = openArchive(path); err != nil {
			return err
		}
		defer src.Close()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "stat archive", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := writeArchive(tmp, src, name, data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "sync temp file", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "chmod temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "replace archive", err)
	}
	committed = true

	logger.Debug("archive member rewritten",
		logging.String("member", name),
		logging.Int("bytes", len(data)),
	)
	return nil
}

func acquire(ctx context.Context, lock *flock.Flock, timeout time.Duration) error {
	var (
		ok  bool
		err error
	)
	if timeout <= 0 {
		ok, err = lock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ok, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return faults.Wrap(faults.ErrIO, "opf", "lock", lock.Path(), err)
	}
	if !ok {
		return faults.Wrap(faults.ErrIO, "opf", "lock",
			fmt.Sprintf("%s is held by another writer", lock.Path()), nil)
	}
	return nil
}

func writeArchive(w io.Writer, src *zip.ReadCloser, name string, data []byte) error {
	zw := zip.NewWriter(w)
	replaced := false
	if src != nil {
		if err := zw.SetComment(src.Comment); err != nil {
			return faults.Wrap(faults.ErrIO, "opf", "rewrite", "copy comment", err)
		}
		for _, f := range src.File {
			if f.Name != name {
				if err := zw.Copy(f); err != nil {
					return faults.Wrap(faults.ErrIO, "opf", "rewrite", "copy member "+f.Name, err)
				}
				continue
			}
			if replaced {
				continue
			}
			method := f.Method
			if method != zip.Store {
				method = zip.Deflate
			}
			if err := writeMember(zw, name, method, data); err != nil {
				return err
			}
			replaced = true
		}
	}
	if !replaced {
		if err := writeMember(zw, name, zip.Deflate, data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "finish archive", err)
	}
	return nil
}

func writeMember(zw *zip.Writer, name string, method uint16, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: time.Now(),
	})
	if err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "create member "+name, err)
	}
	if _, err := w.Write(data); err != nil {
		return faults.Wrap(faults.ErrIO, "opf", "rewrite", "write member "+name, err)
	}
	return nil
}
