// Package fileutil holds the write helpers behind every artifact folio leaves
// on disk.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteExclusive writes data to a file that must not already exist. See
// WriteExclusiveFrom.
func WriteExclusive(path string, data []byte, mode os.FileMode) error {
	return WriteExclusiveFrom(path, bytes.NewReader(data), mode)
}

// WriteExclusiveFrom creates path with O_EXCL and streams r into it. On any
// write or close failure the partial file is removed so it can never be
// mistaken for a complete one.
func WriteExclusiveFrom(path string, r io.Reader, mode os.FileMode) (err error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// WriteAtomic writes data to a temporary sibling and renames it over path,
// so readers see either the previous file or the complete new one.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
