// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/ImageResizer/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

type MinioImageStorage struct {
	bucket string
	client *minio.Client
}

func NewMinioClient(ctx context.Context, cfg config.Storage) (*MinioImageStorage, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "default"
		zlog.Logger.Warn().Msgf("Bucket name is empty. Using default value %q...", bucket)
	}

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Pass, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(ctx, strg, bucket); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to create bucket in MinIO")
		return nil, err
	}

	return &MinioImageStorage{bucket: bucket, client: strg}, nil
}

// MakeDir is a no-op: object keys carry their own prefixes and the bucket is
// ensured at construction.
func (s *MinioImageStorage) MakeDir(context.Context, string) error {
	return nil
}

func (s *MinioImageStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	if _, err := s.client.PutObject(ctx, s.bucket, ObjectKey(key), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}

	return nil
}

// ObjectKey maps a local output path to a bucket key: slash separated,
// cleaned, without leading "/" or "../" segments.
func ObjectKey(p string) string {
	k := path.Clean(filepath.ToSlash(p))
	k = strings.TrimPrefix(k, "/")
	for strings.HasPrefix(k, "../") {
		k = strings.TrimPrefix(k, "../")
	}
	if k == "." || k == ".." {
		return ""
	}
	return k
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
