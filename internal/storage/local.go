package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// LocalStorage writes keys as files under a base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating it
// if necessary. An empty basePath defaults to "./output".
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./output"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "creating local storage directory", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Upload writes reader's contents to key, overwriting any existing file.
func (s *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	full := s.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return cpmerrors.Wrap(cpmerrors.CodeStorageError, "creating parent directory", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return cpmerrors.Wrap(cpmerrors.CodeStorageError, "creating output file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return cpmerrors.Wrap(cpmerrors.CodeStorageError, "writing output file", err)
	}
	return nil
}

// Download opens key for reading.
func (s *LocalStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(s.fullPath(key))
	if err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "opening "+key, err)
	}
	return f, nil
}

// Exists reports whether key is present.
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	_, err := os.Stat(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, cpmerrors.Wrap(cpmerrors.CodeStorageError, "stat "+key, err)
	}
	return true, nil
}

// GetURL returns the filesystem path for key.
func (s *LocalStorage) GetURL(key string) string { return s.fullPath(key) }

func (s *LocalStorage) fullPath(key string) string { return filepath.Join(s.basePath, key) }
