package company

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in memory. It backs unit tests and the
// "memory" store backend for local runs.
type MemoryStore struct {
	mu       sync.RWMutex
	cfg      Config
	profile  *Profile
	products map[string]Product

	// Now stamps lastUpdateDate and createdAt.
	Now func() time.Time
	// Injected failures, checked before any state change.
	GetErr     error
	ReplaceErr error
	PurgeErr   error
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		cfg:      cfg,
		products: make(map[string]Product),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProfileID returns the singleton identifier.
func (m *MemoryStore) ProfileID() string {
	return m.cfg.ProfileID
}

// Get returns a copy of the stored state.
func (m *MemoryStore) Get(_ context.Context) (*Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.profile == nil {
		return nil, ErrNotFound
	}
	return &Company{Profile: cloneProfile(*m.profile), Products: m.productList()}, nil
}

// Replace applies update and swaps the product set atomically.
func (m *MemoryStore) Replace(_ context.Context, update ProfileUpdate, products []ProductSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}

	now := m.Now()
	var p Profile
	if m.profile != nil {
		p = *m.profile
	} else {
		p = Profile{ID: m.cfg.ProfileID, CreatedAt: now}
	}
	p = update.Apply(p)
	p.LastUpdateDate = now

	next := make(map[string]Product, len(products))
	for id, prod := range m.products {
		if prod.InfoID != m.cfg.ProfileID {
			next[id] = prod
		}
	}
	for _, spec := range products {
		id := uuid.NewString()
		next[id] = Product{
			ID:          id,
			Name:        spec.Name,
			Category:    spec.Category,
			Description: spec.Description,
			Price:       spec.Price,
			InfoID:      m.cfg.ProfileID,
		}
	}

	m.profile = &p
	m.products = next
	return nil
}

// Purge removes the image reference and every linked product.
func (m *MemoryStore) Purge(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PurgeErr != nil {
		return "", m.PurgeErr
	}
	if m.profile == nil {
		return "", ErrNotFound
	}

	previous := m.profile.ImageURL
	m.profile.ImageURL = ""
	m.profile.LastUpdateDate = m.Now()
	for id, prod := range m.products {
		if prod.InfoID == m.cfg.ProfileID {
			delete(m.products, id)
		}
	}
	return previous, nil
}

// SeedProduct stores a product under an arbitrary InfoID.
func (m *MemoryStore) SeedProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.products[p.ID] = p
}

// ProductCount returns the number of stored products, linked or not.
func (m *MemoryStore) ProductCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

func (m *MemoryStore) productList() []Product {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		if p.InfoID == m.cfg.ProfileID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func cloneProfile(p Profile) Profile {
	if p.SocialMedia != nil {
		sm := *p.SocialMedia
		p.SocialMedia = &sm
	}
	if p.Taux != nil {
		v := *p.Taux
		p.Taux = &v
	}
	if p.DernierMisAJour != nil {
		v := *p.DernierMisAJour
		p.DernierMisAJour = &v
	}
	return p
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
