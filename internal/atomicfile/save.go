package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Save writes bytes to disk using an atomic rename.
func Save(path string, data []byte, perm os.FileMode) error {
	f, err := Create(path, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("atomicfile: write temp: %w", err)
	}
	return f.Commit()
}

// File is a pending atomic write. Bytes land in a temp file in the
// destination directory; Commit renames it into place, Close discards it.
type File struct {
	tmp       *os.File
	path      string
	perm      os.FileMode
	committed bool
}

// Create opens a pending atomic write for path.
func Create(path string, perm os.FileMode) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("atomicfile: path is required")
	}
	if perm == 0 {
		perm = 0o600
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("atomicfile: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "atomic-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("atomicfile: create temp: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("atomicfile: chmod temp: %w", err)
	}
	return &File{tmp: tmp, path: path, perm: perm}, nil
}

func (f *File) Write(p []byte) (int, error) {
	if f == nil || f.tmp == nil {
		return 0, errors.New("atomicfile: write after close")
	}
	return f.tmp.Write(p)
}

// Commit syncs the temp file and renames it over the destination.
func (f *File) Commit() error {
	if f == nil || f.tmp == nil {
		return errors.New("atomicfile: commit after close")
	}
	name := f.tmp.Name()
	if err := f.tmp.Sync(); err != nil {
		_ = f.tmp.Close()
		_ = os.Remove(name)
		f.tmp = nil
		return fmt.Errorf("atomicfile: sync temp: %w", err)
	}
	if err := f.tmp.Close(); err != nil {
		_ = os.Remove(name)
		f.tmp = nil
		return fmt.Errorf("atomicfile: close temp: %w", err)
	}
	f.tmp = nil
	if err := os.Rename(name, f.path); err != nil {
		// Windows refuses to rename over an existing file; retry once
		// after removing the target.
		if removeErr := os.Remove(f.path); removeErr == nil || os.IsNotExist(removeErr) {
			if retryErr := os.Rename(name, f.path); retryErr == nil {
				f.committed = true
				_ = os.Chmod(f.path, f.perm)
				return nil
			} else {
				err = retryErr
			}
		}
		_ = os.Remove(name)
		return fmt.Errorf("atomicfile: replace file: %w", err)
	}
	f.committed = true
	_ = os.Chmod(f.path, f.perm)
	return nil
}

// Close discards the pending write unless Commit already ran.
func (f *File) Close() error {
	if f == nil || f.tmp == nil {
		return nil
	}
	name := f.tmp.Name()
	err := f.tmp.Close()
	f.tmp = nil
	if !f.committed {
		_ = os.Remove(name)
	}
	return err
}
