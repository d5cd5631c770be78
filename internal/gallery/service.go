// Package gallery stores uploaded images, their generated metadata and
// per-owner records, and lists them with signed download URLs.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gallery/service/internal/describe"
	"github.com/gallery/service/internal/docstore"
	"github.com/gallery/service/internal/signedurl"
	"github.com/gallery/service/internal/storage"
)

var (
	// ErrInvalidInput is returned for missing or malformed arguments before any store call.
	ErrInvalidInput = signedurl.ErrInvalidInput
	// ErrNotFound is returned when the principal has no image under the given name.
	ErrNotFound = errors.New("image not found")
)

// URLResolver returns signed URLs scoped to a principal.
type URLResolver interface {
	Resolve(ctx context.Context, principal, blobName string, ttl time.Duration) (string, error)
	Invalidate(ctx context.Context, principal, blobName string) error
}

// Service orchestrates uploads, deletes and listings.
type Service struct {
	blobs     storage.BlobStore
	docs      docstore.Store
	urls      URLResolver
	describer describe.Describer
	urlTTL    time.Duration
	now       func() time.Time
}

// NewService wires a Service. A nil describer always uses fallback metadata.
func NewService(blobs storage.BlobStore, docs docstore.Store, urls URLResolver, describer describe.Describer, urlTTL time.Duration) *Service {
	if describer == nil {
		describer = describe.Disabled{}
	}
	return &Service{
		blobs:     blobs,
		docs:      docs,
		urls:      urls,
		describer: describer,
		urlTTL:    urlTTL,
		now:       time.Now,
	}
}

// Upload stores the image, its metadata sidecar and an owner record, in that
// order. Any failure aborts the remaining steps. Blobs written before a
// failed record insert are left in place and logged.
func (s *Service) Upload(ctx context.Context, principal string, data []byte, contentType, filenameHint string) (*Image, error) {
	if principal == "" {
		return nil, fmt.Errorf("%w: principal is required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, contentType)
	}

	logger := log.Ctx(ctx)
	blobName := newBlobName(filenameHint, contentType)

	desc, err := s.describer.Describe(ctx, data, contentType)
	if err != nil {
		logger.Warn().Err(err).Str("blob", blobName).Msg("metadata generation failed, using fallback")
		desc = describe.Description{}
	}
	if desc.Title == "" {
		desc.Title = fallbackTitle
	}
	if desc.Description == "" {
		desc.Description = fallbackDescription
	}

	rec := Record{
		Owner:        principal,
		BlobName:     blobName,
		MetadataBlob: sidecarName(blobName),
		Title:        desc.Title,
		Description:  desc.Description,
		ContentType:  contentType,
		UploadedAt:   s.now().UTC(),
	}

	if err := s.blobs.Put(ctx, blobName, data, contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	meta, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.blobs.Put(ctx, rec.MetadataBlob, meta, "application/json"); err != nil {
		logger.Error().Err(err).Str("blob", blobName).Msg("metadata blob failed, image blob left orphaned")
		return nil, fmt.Errorf("store metadata: %w", err)
	}

	key, err := s.docs.Insert(ctx, recordKind, rec)
	if err != nil {
		logger.Error().Err(err).
			Str("blob", blobName).
			Str("metadata_blob", rec.MetadataBlob).
			Msg("record insert failed, blobs left orphaned")
		return nil, fmt.Errorf("insert image record: %w", err)
	}

	logger.Info().Str("blob", blobName).Str("id", key.Name).Int("bytes", len(data)).Msg("image uploaded")
	return &Image{ID: key.Name, Record: rec}, nil
}

// Delete removes the image blob, its sidecar, every matching record of the
// principal and the principal's cached URL. Absent objects are not errors, so
// retries are safe. A blob recorded only under other owners is reported as
// ErrNotFound and left alone, as is a name whose sidecar belongs to another
// image. Once ownership is settled all steps run and any store error fails
// the call.
func (s *Service) Delete(ctx context.Context, principal, blobName string) error {
	if principal == "" || blobName == "" {
		return fmt.Errorf("%w: principal and blob name are required", ErrInvalidInput)
	}
	if isSidecarName(blobName) {
		return ErrNotFound
	}
	logger := log.Ctx(ctx).With().Str("blob", blobName).Logger()

	docs, err := s.docs.Query(ctx, recordKind, docstore.Eq("blob_name", blobName))
	if err != nil {
		return fmt.Errorf("find image records: %w", err)
	}
	if len(docs) == 0 {
		// No record names this blob, so nothing vouches for the sidecar either.
		// Refuse when another image's record claims it.
		claimed, err := s.docs.Query(ctx, recordKind, docstore.Eq("metadata_blob", sidecarName(blobName)))
		if err != nil {
			return fmt.Errorf("find image records: %w", err)
		}
		if len(claimed) > 0 {
			return ErrNotFound
		}
	}
	var own []docstore.Document
	for _, doc := range docs {
		var rec Record
		if err := doc.Decode(&rec); err != nil {
			return err
		}
		if rec.Owner == principal {
			own = append(own, doc)
		}
	}
	if len(docs) > 0 && len(own) == 0 {
		return ErrNotFound
	}

	var errs []error
	for _, name := range []string{blobName, sidecarName(blobName)} {
		if err := s.deleteBlob(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	for _, doc := range own {
		if err := s.docs.Delete(ctx, doc.Key); err != nil {
			errs = append(errs, fmt.Errorf("delete image record %s: %w", doc.Key.Name, err))
		}
	}
	if err := s.urls.Invalidate(ctx, principal, blobName); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error().Err(err).Msg("image delete incomplete")
		return err
	}
	logger.Info().Int("records", len(own)).Msg("image deleted")
	return nil
}

func (s *Service) deleteBlob(ctx context.Context, name string) error {
	ok, err := s.blobs.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check %q: %w", name, err)
	}
	if !ok {
		return nil
	}
	if err := s.blobs.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

// List returns the principal's images, newest first, each with a signed URL.
// An image whose URL cannot be resolved is still listed with an empty URL.
func (s *Service) List(ctx context.Context, principal string) ([]Image, error) {
	if principal == "" {
		return nil, fmt.Errorf("%w: principal is required", ErrInvalidInput)
	}

	images, err := s.records(ctx, docstore.Eq("owner", principal))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.After(images[j].UploadedAt)
	})

	for i := range images {
		u, err := s.urls.Resolve(ctx, principal, images[i].BlobName, s.urlTTL)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("blob", images[i].BlobName).Msg("signed url unavailable")
			continue
		}
		images[i].URL = u
	}
	return images, nil
}

// URL returns a signed URL for one of the principal's images.
func (s *Service) URL(ctx context.Context, principal, blobName string) (string, error) {
	if principal == "" || blobName == "" {
		return "", fmt.Errorf("%w: principal and blob name are required", ErrInvalidInput)
	}
	images, err := s.records(ctx, docstore.Eq("owner", principal), docstore.Eq("blob_name", blobName))
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", ErrNotFound
	}

	u, err := s.urls.Resolve(ctx, principal, blobName, s.urlTTL)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return u, err
}

func (s *Service) records(ctx context.Context, filters ...docstore.Filter) ([]Image, error) {
	docs, err := s.docs.Query(ctx, recordKind, filters...)
	if err != nil {
		return nil, fmt.Errorf("query image records: %w", err)
	}
	images := make([]Image, 0, len(docs))
	for _, doc := range docs {
		img := Image{ID: doc.Key.Name}
		if err := doc.Decode(&img.Record); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}
