package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 implements BlobStore on Amazon S3 using the v2 SDK and its presign client.
type S3 struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
}

var _ BlobStore = (*S3)(nil)

// NewS3 loads the default AWS credential chain for region. A non-empty
// endpoint switches to path-style addressing against that endpoint.
func NewS3(ctx context.Context, region, endpoint, bucket string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        bucket,
	}, nil
}

// Put uploads data under name.
func (s *S3) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", name, s3Err(err))
	}
	return nil
}

// Exists issues a HeadObject for name.
func (s *S3) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err == nil {
		return true, nil
	}
	if err = s3Err(err); errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("head object %q: %w", name, err)
}

// Delete removes the object; S3 reports success for missing keys.
func (s *S3) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if err = s3Err(err); errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete object %q: %w", name, err)
	}
	return nil
}

// MintTemporaryURL presigns a GetObject for an existing object, valid for ttl.
func (s *S3) MintTemporaryURL(ctx context.Context, name string, ttl time.Duration) (string, error) {
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("presign %q: %w", name, ErrNotFound)
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", name, s3Err(err))
	}
	return req.URL, nil
}

// s3Err maps S3 API errors onto the package sentinels, keeping the cause.
func s3Err(err error) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
	}
	return err
}
