package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"asset-aggregator/conf"
)

// Storage read access to bucket-hosted token documents
type Storage interface {
	// Open streams the object at key; callers close the reader
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Scheme URI scheme this store answers for (s3, oss, minio, file)
	Scheme() string
}

var (
	ErrNotFound = errors.New("file not found")
	ErrInvalid  = errors.New("invalid storage configuration")
	ErrTooLarge = errors.New("object exceeds size limit")
)

// NewStorage create storage instance by configuration
func NewStorage(cfg conf.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg.Local.BasePath)
	case "oss":
		return NewOSSStorage(cfg.OSS.Endpoint, cfg.OSS.AccessKey, cfg.OSS.SecretKey, cfg.OSS.Bucket)
	case "s3":
		return NewS3Storage(cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Bucket)
	case "minio":
		return NewMinIOStorage(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, cfg.Type)
	}
}

// ReadLimited reads the whole object, failing with ErrTooLarge past limit bytes.
// limit <= 0 reads without a cap.
func ReadLimited(ctx context.Context, s Storage, key string, limit int64) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s://%s: %w", s.Scheme(), key, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
