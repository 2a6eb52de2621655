// Package storage provides the object store the pipeline lands, reads, archives and writes through.
//
// A [Store] is a flat key space inside one bucket. Three drivers implement it:
//   - [S3Store] : any S3-compatible endpoint through minio-go
//   - [FileStore] over the OS : a local directory standing in for the bucket
//   - [FileStore] in memory : dry runs and tests
//
// Missing objects surface as [shared.ErrObjectNotFound]; every other driver failure wraps [shared.ErrStorage].
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotlake/internal/shared"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the object storage boundary: put, get, list-by-prefix, copy, delete and existence checks.
type Store interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every object whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Copy duplicates src to dst within the bucket.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Bucket names the bucket backing the store.
	Bucket() string
}

// Open builds the [Store] selected by cfg.Driver.
//
// The s3 driver creates the bucket when it is missing.
func Open(ctx context.Context, cfg shared.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		s, err := NewS3Store(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case "fs":
		return NewFileStore(cfg.Root, cfg.Bucket)
	case "memory":
		return NewMemoryStore(cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", shared.ErrObjectNotFound, key)
}

func storageErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", shared.ErrStorage, op, key, err)
}
