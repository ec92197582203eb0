// Package identity talks to the Firebase Auth (Identity Toolkit) REST API for
// the password flows the Admin SDK does not offer.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// Provider errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrUpstream           = errors.New("identity provider error")
)

// ProviderError carries the provider's error code for logging.
type ProviderError struct {
	Status int
	Code   string
	cause  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error (status=%d code=%s): %v", e.Status, e.Code, e.cause)
}

// Unwrap enables errors.Is against the provider sentinels.
func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Identity is the result of a successful sign-in or sign-up.
type Identity struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    int
}

// Provider performs password-based account operations.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SendPasswordReset(ctx context.Context, email string) error
}
