package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// Minio implements BlobStore using a MinIO (or any S3-compatible) backend.
// The bucket stays private; reads go through presigned URLs only.
type Minio struct {
	client *minio.Client
	bucket string
}

var _ BlobStore = (*Minio)(nil)

// NewMinio creates a MinIO client, ensures the bucket exists and returns a
// ready-to-use store.
func NewMinio(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Ctx(ctx).Info().Str("bucket", bucket).Msg("storage: created bucket")
	}

	return &Minio{client: client, bucket: bucket}, nil
}

// Put uploads data under name, replacing any existing object.
func (s *Minio) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", name, minioErr(err))
	}
	return nil
}

// Exists reports whether an object named name is stored.
func (s *Minio) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if err = minioErr(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q: %w", name, err)
}

// Delete is idempotent: S3 semantics already treat removal of a missing key as success.
func (s *Minio) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		if err = minioErr(err); errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", name, err)
	}
	return nil
}

// MintTemporaryURL presigns a GET for an existing object, valid for ttl.
func (s *Minio) MintTemporaryURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("presign %q: %w", name, ErrNotFound)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, name, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", name, minioErr(err))
	}
	return u.String(), nil
}

// minioErr maps MinIO error responses onto the package sentinels.
func minioErr(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
