// Package storage abstracts "write community output somewhere" so
// output.Writer can target either local disk or a Tencent COS bucket
// without knowing which. Adapted from the teacher's internal/storage
// package; the pipeline itself only uploads, so Download and Exists are
// exercised only by tests (the local-storage round-trip and the output
// writer's tests). The interface has no delete operation.
package storage

import (
	"context"
	"io"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// Storage is the object-storage surface output.Writer depends on.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	GetURL(key string) string
}

// Type names a storage backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeCOS   Type = "cos"
)

// Config is the subset of cpmconfig.Config needed to construct a backend.
type Config struct {
	Type      Type
	LocalPath string

	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string
	Scheme    string
}

// New constructs the backend named by cfg.Type, defaulting to local.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case TypeCOS:
		return NewCOSStorage(COSConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
			Domain:    cfg.Domain,
			Scheme:    cfg.Scheme,
		})
	case TypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	default:
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "unsupported storage type: "+string(cfg.Type), nil)
	}
}
