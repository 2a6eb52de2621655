package storage

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/spf13/afero"
)

// FileStore implements [Store] on an [afero.Fs], mapping each key to a file path.
type FileStore struct {
	fs     afero.Fs
	bucket string
	driver string
}

// NewFileStore roots a store at root/bucket on the local filesystem, creating the directory if needed.
func NewFileStore(root, bucket string) (*FileStore, error) {
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("mkdir", dir, err)
	}
	return &FileStore{fs: afero.NewBasePathFs(afero.NewOsFs(), dir), bucket: bucket, driver: "fs"}, nil
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(bucket string) *FileStore {
	return &FileStore{fs: afero.NewMemMapFs(), bucket: bucket, driver: "memory"}
}

func (s *FileStore) Bucket() string { return s.bucket }

func (s *FileStore) name(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}

func (s *FileStore) Put(ctx context.Context, key string, data []byte, _ string) (err error) {
	defer func() { metrics.RecordStorageOperation(s.driver, "put", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	name := s.name(key)
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return storageErr("put", key, err)
	}
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return storageErr("put", key, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func() { metrics.RecordStorageOperation(s.driver, "get", err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err = afero.ReadFile(s.fs, s.name(key))
	switch {
	case os.IsNotExist(err):
		return nil, notFound(key)
	case err != nil:
		return nil, storageErr("get", key, err)
	}
	return data, nil
}

func (s *FileStore) List(ctx context.Context, prefix string) (objects []ObjectInfo, err error) {
	defer func() { metrics.RecordStorageOperation(s.driver, "list", err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := path.Dir(s.name(prefix + "x"))
	if ok, err := afero.DirExists(s.fs, root); err != nil {
		return nil, storageErr("list", prefix, err)
	} else if !ok {
		return []ObjectInfo{}, nil
	}

	objects = []ObjectInfo{}
	err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(filepath.ToSlash(p), "/")
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("list", prefix, err)
	}

	slices.SortFunc(objects, func(a, b ObjectInfo) int { return strings.Compare(a.Key, b.Key) })
	return objects, nil
}

func (s *FileStore) Copy(ctx context.Context, src, dst string) error {
	data, err := s.Get(ctx, src)
	if err != nil {
		return err
	}
	return s.Put(ctx, dst, data, "")
}

func (s *FileStore) Delete(ctx context.Context, key string) (err error) {
	defer func() { metrics.RecordStorageOperation(s.driver, "delete", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(s.name(key)); err != nil && !os.IsNotExist(err) {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := s.fs.Stat(s.name(key))
	switch {
	case os.IsNotExist(err):
		return false, nil
	case err != nil:
		return false, storageErr("stat", key, err)
	}
	return !info.IsDir(), nil
}
