package blob

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps objects in memory. It records every call so tests can
// assert on blob traffic, and it backs the "memory" blob backend.
type MemoryStore struct {
	mu        sync.Mutex
	baseURL   string
	prefix    string
	objects   map[string]Object
	uploads   []string
	deletes   []string
	UploadErr error
	DeleteErr error
}

// NewMemoryStore creates a store whose URLs start with baseURL.
func NewMemoryStore(baseURL, prefix string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  strings.Trim(prefix, "/"),
		objects: make(map[string]Object),
	}
}

// Upload stores a copy of obj.
func (m *MemoryStore) Upload(_ context.Context, obj Object) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	u := m.baseURL + "/" + ObjectName(m.prefix, obj)
	obj.Data = append([]byte(nil), obj.Data...)
	m.objects[u] = obj
	m.uploads = append(m.uploads, u)
	return u, nil
}

// Delete removes the object. Missing objects are ignored.
func (m *MemoryStore) Delete(_ context.Context, u string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, u)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.objects, u)
	return nil
}

// Put seeds an object at u.
func (m *MemoryStore) Put(u string, obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[u] = obj
}

// Has reports whether an object lives at u.
func (m *MemoryStore) Has(u string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[u]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Uploads returns the URLs produced by successful uploads.
func (m *MemoryStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// Deletes returns every URL passed to Delete, including failed attempts.
func (m *MemoryStore) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)
