package gallery

import (
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// recordKind is the document kind of image records.
const recordKind = "Image"

const (
	fallbackTitle       = "Untitled Image"
	fallbackDescription = "No description available"
)

// Record is the persisted metadata of an uploaded image.
type Record struct {
	Owner        string    `json:"owner"`
	BlobName     string    `json:"blob_name"`
	MetadataBlob string    `json:"metadata_blob"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ContentType  string    `json:"content_type,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Image is a record together with its document id and, in listings, a signed URL.
type Image struct {
	ID string `json:"id"`
	Record
	URL string `json:"url,omitempty"`
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxHintLen = 80

// newBlobName builds a collision-free object name from a random id and the
// sanitized client filename. The extension comes from the content type when
// the hint has none, or when it is ".json" and would clash with the sidecar.
func newBlobName(hint, contentType string) string {
	base := filepath.Base(strings.ReplaceAll(hint, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-.")
	if len(base) > maxHintLen {
		base = strings.Trim(base[len(base)-maxHintLen:], "-.")
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" || ext == ".json" {
		base += extensionFor(contentType)
	}
	if strings.TrimSuffix(base, filepath.Ext(base)) == "" {
		base = "image" + base
	}
	return fmt.Sprintf("%s-%s", uuid.NewString(), base)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

// isSidecarName reports whether name has the metadata blob extension, which
// newBlobName never gives an image.
func isSidecarName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

// sidecarName returns "<blobName-without-extension>.json".
func sidecarName(blobName string) string {
	return strings.TrimSuffix(blobName, filepath.Ext(blobName)) + ".json"
}
