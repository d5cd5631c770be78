package signedurl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gallery/service/internal/docstore"
)

// entryKind is the document kind under which entries are persisted.
const entryKind = "SignedURL"

// Entry is a cached signed URL for one (principal, blob) pair.
type Entry struct {
	Principal string    `json:"principal"`
	BlobName  string    `json:"blob_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Repository persists entries in the document store, one document per
// (principal, blob) pair.
type Repository struct {
	docs docstore.Store
}

// NewRepository creates a Repository on the given document store.
func NewRepository(docs docstore.Store) *Repository {
	return &Repository{docs: docs}
}

// entryKey escapes both parts so that distinct pairs never share a name,
// e.g. ("a/b", "c") and ("a", "b/c").
func entryKey(principal, blobName string) docstore.Key {
	return docstore.Key{
		Kind: entryKind,
		Name: url.PathEscape(principal) + "/" + url.PathEscape(blobName),
	}
}

// Get returns the entry for the pair, or docstore.ErrNotFound.
func (r *Repository) Get(ctx context.Context, principal, blobName string) (Entry, error) {
	doc, err := r.docs.Get(ctx, entryKey(principal, blobName))
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := doc.Decode(&e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Put stores e, replacing any previous entry for the same pair.
func (r *Repository) Put(ctx context.Context, e Entry) error {
	if err := r.docs.Put(ctx, entryKey(e.Principal, e.BlobName), e); err != nil {
		return fmt.Errorf("store signed url entry: %w", err)
	}
	return nil
}

// Delete removes the entry for the pair; a missing entry is not an error.
func (r *Repository) Delete(ctx context.Context, principal, blobName string) error {
	if err := r.docs.Delete(ctx, entryKey(principal, blobName)); err != nil {
		return fmt.Errorf("delete signed url entry: %w", err)
	}
	return nil
}
