package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseUser is the identity behind a verified ID token.
type FirebaseUser struct {
	UID            string
	Email          string
	EmailVerified  bool
	SignInProvider string
	AuthTime       time.Time
}

// Error types for authentication failures.
var (
	// ErrNoToken indicates neither a bearer token nor a session cookie was sent.
	ErrNoToken = errors.New("missing bearer token or session cookie")

	// ErrInvalidToken indicates an invalid token format or signature.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch indicates a network error fetching public keys.
	// This should result in HTTP 503 (service unavailable).
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates tokens and returns user information.
type Verifier interface {
	Verify(ctx context.Context, token string) (*FirebaseUser, error)
}

// SignOuter ends every session of a user.
type SignOuter interface {
	SignOut(ctx context.Context, uid string) error
}

// FirebaseVerifier implements Verifier and SignOuter using Firebase Admin SDK.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a new verifier with the given auth client.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates a Firebase ID token and checks for revocation. Revocation
// matters here: a non-admin that was signed out must not keep a working token.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*FirebaseUser, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, verifyError(err)
	}
	return userFromToken(token), nil
}

// SignOut revokes the user's refresh tokens so existing ID tokens fail
// VerifyIDTokenAndCheckRevoked from now on.
func (v *FirebaseVerifier) SignOut(ctx context.Context, uid string) error {
	if err := v.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func verifyError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

func userFromToken(token *fbauth.Token) *FirebaseUser {
	user := &FirebaseUser{UID: token.UID}
	user.Email, _ = token.Claims["email"].(string)
	user.EmailVerified, _ = token.Claims["email_verified"].(bool)
	user.SignInProvider = token.Firebase.SignInProvider
	if at, ok := token.Claims["auth_time"].(float64); ok && at > 0 {
		user.AuthTime = time.Unix(int64(at), 0).UTC()
	}
	return user
}

// ExtractBearerToken extracts the token from an Authorization header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

var (
	_ Verifier  = (*FirebaseVerifier)(nil)
	_ SignOuter = (*FirebaseVerifier)(nil)
)
