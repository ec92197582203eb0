package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// FirebaseStore keeps objects in a Firebase Storage (GCS) bucket and returns
// Firebase download URLs, the same URLs the web SDK's getDownloadURL produces.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
	baseURL    string
}

// FirebaseOption configures a FirebaseStore.
type FirebaseOption func(*FirebaseStore)

// WithDownloadBaseURL overrides https://firebasestorage.googleapis.com,
// e.g. for the Storage emulator.
func WithDownloadBaseURL(u string) FirebaseOption {
	return func(s *FirebaseStore) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// NewFirebaseStore creates a store on bucket. bucketName must match the handle.
func NewFirebaseStore(bucket *storage.BucketHandle, bucketName, prefix string, opts ...FirebaseOption) *FirebaseStore {
	s := &FirebaseStore{
		bucket:     bucket,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
		baseURL:    "https://firebasestorage.googleapis.com",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload writes obj under a fresh name with a download token.
func (s *FirebaseStore) Upload(ctx context.Context, obj Object) (string, error) {
	name := ObjectName(s.prefix, obj)
	token := uuid.NewString()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = map[string]string{downloadTokenKey: token}
	if _, err := w.Write(obj.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("writing object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %s: %w", name, err)
	}
	return s.downloadURL(name, token), nil
}

// Delete removes the object rawURL points at.
func (s *FirebaseStore) Delete(ctx context.Context, rawURL string) error {
	name, err := s.objectName(rawURL)
	if err != nil {
		return err
	}
	err = s.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object %s: %w", name, err)
	}
	return nil
}

func (s *FirebaseStore) downloadURL(name, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		s.baseURL, s.bucketName, url.PathEscape(name), url.QueryEscape(token))
}

// objectName accepts Firebase download URLs, gs:// URLs and
// storage.googleapis.com URLs for this bucket.
func (s *FirebaseStore) objectName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}

	var bucket, name string
	switch {
	case u.Scheme == "gs":
		bucket, name = u.Host, strings.TrimPrefix(u.Path, "/")
	case strings.HasPrefix(u.Path, "/v0/b/"):
		rest := strings.TrimPrefix(u.Path, "/v0/b/")
		var ok bool
		bucket, name, ok = strings.Cut(rest, "/o/")
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
		}
	case u.Host == "storage.googleapis.com":
		bucket, name, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	default:
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}

	if bucket != s.bucketName || name == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}
	return name, nil
}

// Compile-time interface check
var _ Store = (*FirebaseStore)(nil)
