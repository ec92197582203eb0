// Package blob stores the company image in object storage and addresses it by URL.
package blob

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrForeignURL indicates a URL that does not point into this store.
var ErrForeignURL = errors.New("url does not belong to this blob store")

// Object is an upload request.
type Object struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Store uploads objects under generated names and deletes them by URL.
// Deleting an object that does not exist is not an error.
type Store interface {
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, url string) error
}

// ObjectName returns "<prefix>/<uuid><ext>" for obj.
func ObjectName(prefix string, obj Object) string {
	name := uuid.NewString() + Extension(obj.ContentType, obj.Filename)
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Extension picks the file extension from the content type. The original
// filename only counts when its extension maps back to the same type.
func Extension(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 6 {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext)); err == nil && mediaType == contentType {
		return ext
	}
	return ""
}
