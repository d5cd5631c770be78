package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCS implements BlobStore on a Google Cloud Storage bucket. Signing uses the
// client's detected credentials (a service account key or the IAM signBlob API).
type GCS struct {
	client *gcs.Client
	bucket string
}

var _ BlobStore = (*GCS)(nil)

// NewGCS creates a store backed by the given bucket using application default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Put writes data to the object name, replacing any previous version.
func (s *GCS) Put(ctx context.Context, name string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", name, gcsErr(err))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %q: %w", name, gcsErr(err))
	}
	return nil
}

// Exists reports whether the object has attributes in the bucket.
func (s *GCS) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(name).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if err = gcsErr(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("object attrs %q: %w", name, err)
}

// Delete removes the object; a missing object is not an error.
func (s *GCS) Delete(ctx context.Context, name string) error {
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		if err = gcsErr(err); errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete object %q: %w", name, err)
	}
	return nil
}

// MintTemporaryURL signs a V4 GET URL for an existing object, valid for ttl.
func (s *GCS) MintTemporaryURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("sign %q: %w", name, ErrNotFound)
	}

	u, err := s.client.Bucket(s.bucket).SignedURL(name, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign %q: %w", name, gcsErr(err))
	}
	return u, nil
}

// Close releases the underlying client.
func (s *GCS) Close() error {
	return s.client.Close()
}

// gcsErr maps GCS errors onto the package sentinels, keeping the cause.
func gcsErr(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	return err
}
