// Package fsutil writes files through a temp file and rename so a failed
// write never leaves a truncated script or build description behind.
package fsutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pargo/cargo-pargo/internal/errs"
)

// CopyFile copies src over dst, keeping src's permissions
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errs.IO("open", src, err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errs.IO("stat", src, err)
	}

	return writeAtomic(dst, srcFile, srcInfo.Mode().Perm())
}

// WriteFile replaces the contents of path with data
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return writeAtomic(path, bytes.NewReader(data), perm)
}

func writeAtomic(dst string, r io.Reader, perm os.FileMode) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errs.IO("mkdir", filepath.Dir(dst), err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".pargo-tmp-*")
	if err != nil {
		return errs.IO("create temp", dst, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := io.Copy(tmpFile, r); err != nil {
		_ = tmpFile.Close()
		return errs.IO("write", dst, err)
	}

	if err := tmpFile.Chmod(perm); err != nil {
		_ = tmpFile.Close()
		return errs.IO("chmod", dst, err)
	}

	if err := tmpFile.Close(); err != nil {
		return errs.IO("close", dst, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return errs.IO("rename", dst, err)
	}

	return nil
}
