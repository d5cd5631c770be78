// Package describe derives a title and description for image bytes using an
// external text-generation model.
package describe

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the model cannot produce a description.
var ErrUnavailable = errors.New("description unavailable")

// Description is the generated metadata for one image.
type Description struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Describer generates a Description for an image.
type Describer interface {
	Describe(ctx context.Context, image []byte, contentType string) (Description, error)
}

// Disabled is a Describer that always fails; uploads then fall back to
// placeholder metadata.
type Disabled struct{}

func (Disabled) Describe(context.Context, []byte, string) (Description, error) {
	return Description{}, ErrUnavailable
}
