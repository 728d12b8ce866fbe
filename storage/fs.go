package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/veligo/galleria/gallery"
)

var _ Storage = (*FilesystemStorage)(nil)

// FilesystemStorage is a [Storage] that stores images below a base directory.
// Writes go to a temporary file first and are renamed into place, so readers
// never observe partially written images.
type FilesystemStorage struct {
	basedir string
}

// NewFilesystemStorage returns a [*FilesystemStorage] rooted at basedir,
// creating the directory if needed.
func NewFilesystemStorage(basedir string) (*FilesystemStorage, error) {
	if err := os.MkdirAll(basedir, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &FilesystemStorage{basedir: basedir}, nil
}

// Put implements [Storage].
func (s *FilesystemStorage) Put(_ context.Context, p string, contents io.Reader) (gallery.Locator, error) {
	full := filepath.Join(s.basedir, filepath.FromSlash(p))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, contents); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	return gallery.Locator("file://" + full), nil
}

// Get implements [Storage].
func (s *FilesystemStorage) Get(_ context.Context, p string) (io.Reader, error) {
	full := filepath.Join(s.basedir, filepath.FromSlash(p))

	b, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", full, err)
	}

	return bytes.NewReader(b), nil
}
