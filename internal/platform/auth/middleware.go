package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/company-admin/internal/platform/logging"
)

// userContextKey is the context key for the authenticated user.
type userContextKey struct{}

// sessionContextKey is the context key for the resolved gate session.
type sessionContextKey struct{}

// ErrNotAdmin indicates a valid identity that is not the administrator.
var ErrNotAdmin = errors.New("not the administrator")

// Authenticator turns request credentials into a gate session.
type Authenticator struct {
	verifier Verifier
	gate     *Gate
	cookies  *CookieSessions
}

// NewAuthenticator creates an Authenticator. cookies may be nil to accept
// bearer tokens only.
func NewAuthenticator(verifier Verifier, gate *Gate, cookies *CookieSessions) *Authenticator {
	return &Authenticator{verifier: verifier, gate: gate, cookies: cookies}
}

// Gate returns the administrator gate.
func (a *Authenticator) Gate() *Gate {
	return a.gate
}

// Cookies returns the session cookie store, or nil.
func (a *Authenticator) Cookies() *CookieSessions {
	return a.cookies
}

// Authenticate reads the token from the Authorization header, falling back to
// the session cookie, verifies it and resolves the gate. A non-admin identity
// is signed out and reported with ErrNotAdmin.
func (a *Authenticator) Authenticate(ctx context.Context, authorization, cookie string) (Session, error) {
	token, err := a.token(authorization, cookie)
	if err != nil {
		return Session{State: Unauthenticated}, err
	}

	user, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return Session{State: Unauthenticated}, err
	}

	session := a.gate.Resolve(ctx, user)
	if session.State == NonAdmin {
		return session, ErrNotAdmin
	}
	return session, nil
}

func (a *Authenticator) token(authorization, cookie string) (string, error) {
	if authorization != "" || a.cookies == nil {
		return ExtractBearerToken(authorization)
	}
	return a.cookies.TokenFromHeader(cookie)
}

// NewAuthMiddleware creates Huma middleware that admits only the administrator.
// It checks the operation's Security requirements and validates tokens.
func NewAuthMiddleware(api huma.API, authn *Authenticator) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		cookie := ctx.Header("Cookie")
		session, err := authn.Authenticate(ctx.Context(), ctx.Header("Authorization"), cookie)
		if err != nil {
			reason := categorizeAuthError(err)
			applog.LogWarn(ctx.Context(), "auth failed", zap.String("reason", reason))

			if errors.Is(err, ErrCertificateFetch) {
				ctx.SetHeader("Retry-After", "30")
				_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable,
					"authentication service temporarily unavailable")
				return
			}
			if authn.cookies != nil && cookie != "" {
				ctx.AppendHeader("Set-Cookie", authn.cookies.Expire().String())
			}
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, unauthorizedMessage(err))
			return
		}

		ctx = huma.WithValue(ctx, userContextKey{}, session.User)
		ctx = huma.WithValue(ctx, sessionContextKey{}, session)
		next(ctx)
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "missing or invalid authorization header"
	case errors.Is(err, ErrNotAdmin):
		return "account is not authorized for this dashboard"
	default:
		return "invalid or expired token"
	}
}

// categorizeAuthError returns a safe category string for logging.
func categorizeAuthError(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// UserFromContext retrieves the authenticated user from context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *FirebaseUser {
	user, _ := ctx.Value(userContextKey{}).(*FirebaseUser)
	return user
}

// SessionFromContext retrieves the resolved session. It reports Unauthenticated
// for operations that skipped authentication.
func SessionFromContext(ctx context.Context) Session {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	if !ok {
		return Session{State: Unauthenticated}
	}
	return session
}
