package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/company-admin/internal/platform/auth"
	"github.com/janisto/company-admin/internal/platform/identity"
	applog "github.com/janisto/company-admin/internal/platform/logging"
)

const resourceType = "session"

// Register registers the session, signup and password reset endpoints.
// authn must carry a cookie store.
func Register(api huma.API, provider identity.Provider, authn *auth.Authenticator) {
	gate := authn.Gate()

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/session",
		Summary:     "Get session state",
		Description: "Reports whether the caller is the administrator. Any other identity is signed out and reported as unauthenticated.",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *SessionGetInput) (*SessionGetOutput, error) {
		s, err := authn.Authenticate(ctx, input.Authorization, input.Cookie)
		if errors.Is(err, auth.ErrCertificateFetch) {
			return nil, huma.Error503ServiceUnavailable("authentication service temporarily unavailable")
		}
		out := &SessionGetOutput{Body: toHTTPSession(s)}
		if err != nil && input.Cookie != "" && !errors.Is(err, auth.ErrNoToken) {
			out.SetCookie = authn.Cookies().Expire().String()
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/session",
		Summary:     "Sign in",
		Description: "Signs in with email and password. Only the administrator receives a session; any other account is signed out immediately.",
		Tags:        []string{"Session"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		id, err := provider.SignIn(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			applog.LogAuditEvent(ctx, "login", "", resourceType, "", applog.AuditFailure,
				map[string]any{"error": categorizeError(err)})
			return nil, mapProviderError(err)
		}

		s := gate.Resolve(ctx, &auth.FirebaseUser{UID: id.UID, Email: id.Email})
		if !s.Authorized() {
			applog.LogAuditEvent(ctx, "login", id.UID, resourceType, id.UID, applog.AuditFailure,
				map[string]any{"error": "not_admin"})
			return nil, huma.Error403Forbidden("account is not authorized for this dashboard")
		}

		cookie, err := authn.Cookies().Issue(id.IDToken)
		if err != nil {
			applog.LogError(ctx, "issuing session cookie failed", err)
			return nil, huma.Error500InternalServerError("internal error")
		}

		applog.LogAuditEvent(ctx, "login", id.UID, resourceType, id.UID, applog.AuditSuccess, nil)
		return &LoginOutput{
			SetCookie: cookie.String(),
			Body: LoginResult{
				Session:   toHTTPSession(s),
				IDToken:   id.IDToken,
				ExpiresIn: id.ExpiresIn,
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodDelete,
		Path:          "/session",
		Summary:       "Sign out",
		Description:   "Clears the session cookie and revokes the administrator's refresh tokens when the caller is known.",
		Tags:          []string{"Session"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *LogoutInput) (*LogoutOutput, error) {
		s, err := authn.Authenticate(ctx, input.Authorization, input.Cookie)
		if err == nil && s.Authorized() {
			uid := s.User.UID
			if err := gate.SignOut(ctx, uid); err != nil {
				applog.LogWarn(ctx, "revoking tokens on logout failed", zap.String("uid", uid), zap.Error(err))
			}
			applog.LogAuditEvent(ctx, "logout", uid, resourceType, uid, applog.AuditSuccess, nil)
		}
		return &LogoutOutput{SetCookie: authn.Cookies().Expire().String()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/signup",
		Summary:       "Create an account",
		Description:   "Creates a password account. A new account never gains dashboard access and no session is issued.",
		Tags:          []string{"Session"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
		id, err := provider.SignUp(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			applog.LogAuditEvent(ctx, "signup", "", "account", "", applog.AuditFailure,
				map[string]any{"error": categorizeError(err)})
			return nil, mapProviderError(err)
		}
		applog.LogAuditEvent(ctx, "signup", id.UID, "account", id.UID, applog.AuditSuccess, nil)
		return &SignupOutput{Body: Account{UID: id.UID, Email: id.Email}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "password-reset",
		Method:        http.MethodPost,
		Path:          "/password-reset",
		Summary:       "Send a password reset email",
		Description:   "Asks the identity provider to email a reset link. Unknown addresses are accepted silently.",
		Tags:          []string{"Session"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *PasswordResetInput) (*PasswordResetOutput, error) {
		err := provider.SendPasswordReset(ctx, input.Body.Email)
		if err != nil && !errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, mapProviderError(err)
		}
		return &PasswordResetOutput{}, nil
	})
}

func toHTTPSession(s auth.Session) Session {
	if !s.Authorized() {
		return Session{State: auth.Unauthenticated.String()}
	}
	return Session{State: s.State.String(), UID: s.User.UID, Email: s.User.Email}
}

func mapProviderError(err error) error {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid email or password")
	case errors.Is(err, identity.ErrUserDisabled):
		return huma.Error403Forbidden("account disabled")
	case errors.Is(err, identity.ErrEmailExists):
		return huma.Error409Conflict("email already registered")
	case errors.Is(err, identity.ErrWeakPassword):
		return huma.Error422UnprocessableEntity("password too weak")
	case errors.Is(err, identity.ErrInvalidEmail):
		return huma.Error422UnprocessableEntity("invalid email")
	case errors.Is(err, identity.ErrTooManyAttempts):
		return huma.Error429TooManyRequests("too many attempts, try again later")
	default:
		return huma.Error502BadGateway("identity provider unavailable")
	}
}

// categorizeError converts provider errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, identity.ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, identity.ErrEmailExists):
		return "email_exists"
	case errors.Is(err, identity.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, identity.ErrTooManyAttempts):
		return "too_many_attempts"
	default:
		return "upstream_error"
	}
}
