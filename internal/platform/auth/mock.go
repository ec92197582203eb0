package auth

import (
	"context"
	"sync"
)

// MockVerifier provides fake token verification for tests.
type MockVerifier struct {
	User  *FirebaseUser
	Error error
}

// Verify returns the configured user or error.
func (m *MockVerifier) Verify(_ context.Context, _ string) (*FirebaseUser, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.User, nil
}

// MockSignOuter records forced sign-outs.
type MockSignOuter struct {
	mu    sync.Mutex
	uids  []string
	Error error
}

// SignOut records uid and returns the configured error.
func (m *MockSignOuter) SignOut(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uids = append(m.uids, uid)
	return m.Error
}

// SignedOut returns the UIDs passed to SignOut so far.
func (m *MockSignOuter) SignedOut() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uids...)
}

// TestUser returns a standard test user. Tests use its UID as the admin UID.
func TestUser() *FirebaseUser {
	return &FirebaseUser{
		UID:            "test-user-123",
		Email:          "test@example.com",
		EmailVerified:  true,
		SignInProvider: "password",
	}
}

// TestNonAdmin returns a valid user that is not the administrator.
func TestNonAdmin() *FirebaseUser {
	return &FirebaseUser{
		UID:            "other-user-456",
		Email:          "other@example.com",
		EmailVerified:  true,
		SignInProvider: "password",
	}
}

// Compile-time interface checks
var (
	_ Verifier  = (*MockVerifier)(nil)
	_ SignOuter = (*MockSignOuter)(nil)
)
