// Package storage defines the blob store used for image bytes and their
// metadata sidecars. Swap implementations by changing the concrete type
// injected at startup: MinIO (any S3-compatible provider), Google Cloud
// Storage, Amazon S3, or an in-process memory store for development.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the named object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPermissionDenied is returned when the backend refuses the operation.
	ErrPermissionDenied = errors.New("permission denied")
)

// BlobStore is durable object storage keyed by name.
type BlobStore interface {
	// Put stores data under name, replacing any existing object.
	Put(ctx context.Context, name string, data []byte, contentType string) error
	// Exists reports whether an object is stored under name.
	Exists(ctx context.Context, name string) (bool, error)
	// Delete removes the object. Deleting an absent object is not an error.
	Delete(ctx context.Context, name string) error
	// MintTemporaryURL returns a signed GET URL valid for ttl.
	// It fails with ErrNotFound when the object does not exist.
	MintTemporaryURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}
