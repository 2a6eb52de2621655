package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/spotlake/internal/metrics"
	"github.com/desertthunder/spotlake/internal/shared"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store implements [Store] against an S3-compatible endpoint.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
}

// NewS3Store builds a client for cfg.Endpoint. No request is made until the store is used.
func NewS3Store(cfg shared.StorageConfig) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: storage.endpoint is required for the s3 driver", shared.ErrInvalidConfig)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	return &S3Store{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

func (s *S3Store) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket when it does not exist.
func (s *S3Store) EnsureBucket(ctx context.Context) (err error) {
	defer func() { metrics.RecordStorageOperation("s3", "ensure_bucket", err) }()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return storageErr("bucket_exists", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return storageErr("make_bucket", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	defer func() { metrics.RecordStorageOperation("s3", "put", err) }()

	reader := bytes.NewReader(data)
	_, err = s.client.PutObject(ctx, s.bucket, key, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return storageErr("put", key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func() { metrics.RecordStorageOperation("s3", "get", err) }()

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	defer obj.Close()

	data, err = io.ReadAll(obj)
	if err != nil {
		return nil, s.wrap("get", key, err)
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) (objects []ObjectInfo, err error) {
	defer func() { metrics.RecordStorageOperation("s3", "list", err) }()

	objects = []ObjectInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, storageErr("list", prefix, obj.Err)
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}

func (s *S3Store) Copy(ctx context.Context, src, dst string) (err error) {
	defer func() { metrics.RecordStorageOperation("s3", "copy", err) }()

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: src},
	)
	if err != nil {
		return s.wrap("copy", src, err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) (err error) {
	defer func() { metrics.RecordStorageOperation("s3", "delete", err) }()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return storageErr("delete", key, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, storageErr("stat", key, err)
}

func (s *S3Store) wrap(op, key string, err error) error {
	if isNoSuchKey(err) {
		return notFound(key)
	}
	return storageErr(op, key, err)
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
