package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage keeps objects on the local filesystem under root/bucket/path.
// It is the default backend for development and single-node deployments.
type LocalStorage struct {
	root string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStorage{root: abs}, nil
}

func (l *LocalStorage) resolve(bucket, path string) string {
	return filepath.Join(l.root, bucket, filepath.FromSlash(path))
}

func (l *LocalStorage) Upload(_ context.Context, bucket, path string, data io.Reader, _ string) error {
	full := l.resolve(bucket, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

func (l *LocalStorage) Download(_ context.Context, bucket, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(bucket, path))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

// Delete removes the object. Missing objects are not an error.
func (l *LocalStorage) Delete(_ context.Context, bucket, path string) error {
	err := os.Remove(l.resolve(bucket, path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ Storage = (*LocalStorage)(nil)
