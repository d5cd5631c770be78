// Package docstore is a small schemaless document store: JSON documents
// grouped by kind, addressed by key, queried by string equality on
// top-level fields.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNotFound is returned when no document exists under a key.
var ErrNotFound = errors.New("document not found")

// Key addresses a single document.
type Key struct {
	Kind string
	Name string
}

func (k Key) String() string {
	return k.Kind + "/" + k.Name
}

// Document is a stored JSON document.
type Document struct {
	Key       Key
	Data      json.RawMessage
	CreatedAt time.Time
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.Key, err)
	}
	return nil
}

// Filter matches documents whose top-level Field equals Value.
type Filter struct {
	Field string
	Value string
}

// Eq builds an equality filter.
func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// Store is implemented by every document store backend.
type Store interface {
	// Insert stores v as a new document of kind under a generated name.
	Insert(ctx context.Context, kind string, v any) (Key, error)
	// Put stores v under key, replacing any existing document.
	Put(ctx context.Context, key Key, v any) error
	// Get returns the document under key or ErrNotFound.
	Get(ctx context.Context, key Key) (Document, error)
	// Query returns every document of kind matching all filters, oldest first.
	Query(ctx context.Context, kind string, filters ...Filter) ([]Document, error)
	// Delete removes the document under key. A missing document is not an error.
	Delete(ctx context.Context, key Key) error
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateKey(key Key) error {
	if key.Kind == "" || key.Name == "" {
		return fmt.Errorf("invalid key %q: kind and name are required", key)
	}
	return nil
}

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
	}
	return nil
}
