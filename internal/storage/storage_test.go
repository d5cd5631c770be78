package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestMemory_PutExistsDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("photos")

	require.NoError(t, m.Put(ctx, "a.jpg", []byte("jpeg"), "image/jpeg"))

	ok, err := m.Exists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, ct, ok := m.Object("a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg"), data)
	assert.Equal(t, "image/jpeg", ct)

	require.NoError(t, m.Delete(ctx, "a.jpg"))
	require.NoError(t, m.Delete(ctx, "a.jpg"), "deleting an absent object is a no-op")

	ok, err = m.Exists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_MintTemporaryURL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("photos")
	m.now = func() time.Time { return time.Unix(1000, 0) }

	_, err := m.MintTemporaryURL(ctx, "missing.jpg", time.Minute)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Put(ctx, "a.jpg", []byte("x"), "image/jpeg"))
	first, err := m.MintTemporaryURL(ctx, "a.jpg", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, first, "memory://photos/a.jpg?")
	assert.Contains(t, first, "expires=1060")

	second, err := m.MintTemporaryURL(ctx, "a.jpg", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestMinioErr(t *testing.T) {
	err := minioErr(minioErrorResponse("NoSuchKey", 404, "The specified key does not exist."))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "The specified key does not exist.")

	err = minioErr(minioErrorResponse("AccessDenied", 403, "Access Denied."))
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "Access Denied.")

	other := minioErrorResponse("SlowDown", 503, "Please reduce your request rate.")
	assert.Equal(t, other, minioErr(other))
}

func minioErrorResponse(code string, status int, message string) error {
	return minio.ErrorResponse{Code: code, StatusCode: status, Message: message}
}

func TestS3Err(t *testing.T) {
	require.ErrorIs(t, s3Err(&types.NotFound{}), ErrNotFound)
	require.ErrorIs(t, s3Err(fmt.Errorf("wrapped: %w", &types.NoSuchKey{})), ErrNotFound)

	err := s3Err(&smithy.GenericAPIError{Code: "AccessDenied", Message: "bucket policy denies GetObject"})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "bucket policy denies GetObject")

	other := errors.New("connection reset")
	assert.Equal(t, other, s3Err(other))
}

func TestGCSErr(t *testing.T) {
	require.ErrorIs(t, gcsErr(gcs.ErrObjectNotExist), ErrNotFound)

	err := gcsErr(&googleapi.Error{Code: 403, Message: "caller lacks storage.objects.get"})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "caller lacks storage.objects.get")
}
