// Package fileutil copies archives for pre-save backups.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFileVerified copies src to dst and confirms the result by re-reading it:
// the size and SHA256 of dst must match what was read from src. The copy is
// staged in a temp file next to dst and renamed into place, so dst is either
// the previous file or a verified copy. dst keeps src's permission bits.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp copy: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(tmp, io.TeeReader(in, srcHasher))
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if written != srcInfo.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync copy: %w", err)
	}

	dstSum, err := hashFrom(tmp)
	if err != nil {
		return err
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := tmp.Chmod(srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename copy: %w", err)
	}
	return nil
}

func hashFrom(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind copy: %w", err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash copy: %w", err)
	}
	return h.Sum(nil), nil
}
