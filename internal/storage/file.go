package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// FileMedium stores each key as a JSON file inside a directory.
type FileMedium struct {
	dir  string
	opts options
}

// NewFileMedium creates a file-backed medium rooted at dir.
// The directory is created on first write.
func NewFileMedium(dir string, opts ...Option) *FileMedium {
	return &FileMedium{
		dir:  dir,
		opts: newOptions(opts),
	}
}

// Dir returns the directory holding the files.
func (f *FileMedium) Dir() string {
	return f.dir
}

func (f *FileMedium) path(key string) string {
	// Keys are fixed identifiers; path separators are flattened defensively.
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

// Get returns the value stored under key.
func (f *FileMedium) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}

// Put writes value atomically: a temp file is written and renamed into place.
func (f *FileMedium) Put(_ context.Context, key string, value []byte) error {
	if err := f.opts.checkQuota(key, value); err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", wrapNoSpace(err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Already renamed on success

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %q: %w", key, wrapNoSpace(err))
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", key, wrapNoSpace(err))
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		return fmt.Errorf("replacing %q: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (f *FileMedium) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

// wrapNoSpace maps a full disk to ErrQuotaExceeded.
func wrapNoSpace(err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}
