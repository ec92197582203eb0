package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	applog "github.com/janisto/company-admin/internal/platform/logging"
	"github.com/janisto/company-admin/internal/service/blob"
)

const (
	resourceType = "company"
	// DefaultMaxImageBytes caps uploaded images.
	DefaultMaxImageBytes int64 = 5 << 20
)

// Service reconciles the profile, its products and its image. Concurrent
// writers race with last-write-wins; nothing is retried.
type Service struct {
	store         Store
	blobs         blob.Store
	validate      *validator.Validate
	maxImageBytes int64
}

// Option configures a Service.
type Option func(*Service)

// WithMaxImageBytes caps accepted image sizes.
func WithMaxImageBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImageBytes = n
		}
	}
}

// NewService creates a Service over store and blobs.
func NewService(store Store, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		blobs:         blobs,
		validate:      newValidator(),
		maxImageBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxImageBytes returns the largest accepted image in bytes.
func (s *Service) MaxImageBytes() int64 {
	return s.maxImageBytes
}

// PurgeResult reports what Purge removed.
type PurgeResult struct {
	// PreviousImageURL is the reference held before the purge, if any.
	PreviousImageURL string
	// BlobDeleteErr is set when the image could not be deleted. The purge
	// itself still committed.
	BlobDeleteErr error
}

// Get returns the profile with its products.
func (s *Service) Get(ctx context.Context) (*Company, error) {
	c, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return c, nil
}

// Upsert makes the stored state match snap. img, when non-nil, replaces the
// stored image. Validation happens before any store or blob call. Blob
// changes happen before the record transaction commits.
func (s *Service) Upsert(ctx context.Context, actor string, snap Snapshot, img *Image) (*Company, error) {
	c, err := s.upsert(ctx, snap, img)
	if err != nil {
		applog.LogAuditEvent(ctx, "upsert", actor, resourceType, s.store.ProfileID(), applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}
	applog.LogAuditEvent(ctx, "upsert", actor, resourceType, s.store.ProfileID(), applog.AuditSuccess,
		map[string]any{"products": len(c.Products), "image": c.Profile.ImageURL != ""})
	return c, nil
}

func (s *Service) upsert(ctx context.Context, snap Snapshot, img *Image) (*Company, error) {
	snap = normalize(snap)
	if err := s.validateSnapshot(snap); err != nil {
		return nil, err
	}
	var upload Image
	if img != nil {
		var err error
		if upload, err = s.validateImage(*img); err != nil {
			return nil, err
		}
	}

	var current *Profile
	existing, err := s.store.Get(ctx)
	switch {
	case err == nil:
		current = &existing.Profile
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	update := PlanProfileUpdate(current, snap)
	var stored string
	if current != nil {
		stored = current.ImageURL
	}

	var uploaded string
	switch {
	case img != nil:
		if stored != "" {
			s.deleteBestEffort(ctx, stored, "superseded")
		}
		uploaded, err = s.blobs.Upload(ctx, blob.Object{
			Data:        upload.Data,
			ContentType: upload.ContentType,
			Filename:    upload.Filename,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlobWrite, err)
		}
		update.ImageURL = Set(uploaded)
	case snap.ImageURL != "":
		// The form still shows the stored image.
	case stored != "":
		s.deleteBestEffort(ctx, stored, "cleared")
		update.ImageURL = Remove[string]()
	}

	if err := s.store.Replace(ctx, update, snap.Products); err != nil {
		if uploaded != "" {
			s.discardOrphan(ctx, uploaded)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	c, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}
	return c, nil
}

// Purge removes the products and the image reference in one transaction,
// then deletes the image best-effort.
func (s *Service) Purge(ctx context.Context, actor string) (*PurgeResult, error) {
	previous, err := s.store.Purge(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			err = fmt.Errorf("%w: %w", ErrStoreWrite, err)
		}
		applog.LogAuditEvent(ctx, "purge", actor, resourceType, s.store.ProfileID(), applog.AuditFailure,
			map[string]any{"error": categorizeError(err)})
		return nil, err
	}

	res := &PurgeResult{PreviousImageURL: previous}
	if previous != "" {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			res.BlobDeleteErr = fmt.Errorf("%w: %w", ErrBlobDelete, err)
			applog.LogWarn(ctx, "image delete after purge failed",
				zap.String("imageUrl", previous), zap.Error(err))
		}
	}

	applog.LogAuditEvent(ctx, "purge", actor, resourceType, s.store.ProfileID(), applog.AuditSuccess,
		map[string]any{"imageDeleted": previous != "" && res.BlobDeleteErr == nil})
	return res, nil
}

func (s *Service) deleteBestEffort(ctx context.Context, url, reason string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		applog.LogWarn(ctx, "image delete failed",
			zap.String("imageUrl", url), zap.String("reason", reason),
			zap.Error(fmt.Errorf("%w: %w", ErrBlobDelete, err)))
	}
}

// discardOrphan removes an image uploaded for a write that did not commit.
// A failure leaves an orphaned object and is logged with its URL.
func (s *Service) discardOrphan(ctx context.Context, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		applog.LogError(ctx, "orphaned image left in blob store", err, zap.String("imageUrl", url))
	}
}
