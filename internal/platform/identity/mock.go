package identity

import (
	"context"
	"sync"
)

// MockProvider is an in-memory Provider for tests.
type MockProvider struct {
	mu        sync.Mutex
	accounts  map[string]mockAccount
	resets    []string
	SignInErr error
	SignUpErr error
	ResetErr  error
}

type mockAccount struct {
	uid      string
	password string
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{accounts: make(map[string]mockAccount)}
}

// AddAccount registers an account. The issued ID token is "token-" + uid.
func (m *MockProvider) AddAccount(uid, email, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[email] = mockAccount{uid: uid, password: password}
}

// SignIn returns the account's identity when the password matches.
func (m *MockProvider) SignIn(_ context.Context, email, password string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SignInErr != nil {
		return nil, m.SignInErr
	}
	acct, ok := m.accounts[email]
	if !ok || acct.password != password {
		return nil, ErrInvalidCredentials
	}
	return mockIdentity(acct.uid, email), nil
}

// SignUp registers a new account with uid "uid-" + email.
func (m *MockProvider) SignUp(_ context.Context, email, password string) (*Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SignUpErr != nil {
		return nil, m.SignUpErr
	}
	if _, ok := m.accounts[email]; ok {
		return nil, ErrEmailExists
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	uid := "uid-" + email
	m.accounts[email] = mockAccount{uid: uid, password: password}
	return mockIdentity(uid, email), nil
}

// SendPasswordReset records the email.
func (m *MockProvider) SendPasswordReset(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResetErr != nil {
		return m.ResetErr
	}
	m.resets = append(m.resets, email)
	return nil
}

// Resets returns the emails passed to SendPasswordReset.
func (m *MockProvider) Resets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resets...)
}

func mockIdentity(uid, email string) *Identity {
	return &Identity{
		UID:          uid,
		Email:        email,
		IDToken:      "token-" + uid,
		RefreshToken: "refresh-" + uid,
		ExpiresIn:    3600,
	}
}

// Compile-time interface check
var _ Provider = (*MockProvider)(nil)
