package company

import "context"

// Store persists the profile and its products. Replace and Purge each commit
// in one transaction.
type Store interface {
	// ProfileID returns the fixed identifier of the singleton profile.
	ProfileID() string
	// Get returns the profile and its products, or ErrNotFound.
	Get(ctx context.Context) (*Company, error)
	// Replace applies update to the profile, creating it when absent, and
	// replaces every product with one fresh record per spec.
	Replace(ctx context.Context, update ProfileUpdate, products []ProductSpec) error
	// Purge removes the image reference and every product, and returns the
	// removed image reference. It fails with ErrNotFound when no profile exists.
	Purge(ctx context.Context) (string, error)
}
