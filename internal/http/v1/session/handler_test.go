package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/company-admin/internal/platform/auth"
	"github.com/janisto/company-admin/internal/platform/identity"
	applog "github.com/janisto/company-admin/internal/platform/logging"
	appmiddleware "github.com/janisto/company-admin/internal/platform/middleware"
	"github.com/janisto/company-admin/internal/platform/respond"
)

const cookieName = "test_session"

type testEnv struct {
	router    chi.Router
	provider  *identity.MockProvider
	verifier  *auth.MockVerifier
	signOuter *auth.MockSignOuter
	cookies   *auth.CookieSessions
}

func newTestEnv() *testEnv {
	env := &testEnv{
		provider:  identity.NewMockProvider(),
		verifier:  &auth.MockVerifier{User: auth.TestUser()},
		signOuter: &auth.MockSignOuter{},
		cookies: auth.NewCookieSessions(auth.CookieConfig{
			Name:   cookieName,
			Secret: "0123456789abcdef0123456789abcdef",
			MaxAge: time.Hour,
		}),
	}
	admin := auth.TestUser()
	env.provider.AddAccount(admin.UID, admin.Email, "admin-pass")
	other := auth.TestNonAdmin()
	env.provider.AddAccount(other.UID, other.Email, "other-pass")

	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	api := humachi.New(router, huma.DefaultConfig("SessionTest", "test"))
	authn := auth.NewAuthenticator(env.verifier, auth.NewGate(admin.UID, env.signOuter), env.cookies)
	api.UseMiddleware(auth.NewAuthMiddleware(api, authn))
	Register(api, env.provider, authn)
	env.router = router
	return env
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func TestLoginAdmin(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/session", `{"email":"test@example.com","password":"admin-pass"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if result.State != "admin" || result.UID != auth.TestUser().UID {
		t.Fatalf("unexpected session %+v", result.Session)
	}
	if result.IDToken != "token-"+auth.TestUser().UID || result.ExpiresIn != 3600 {
		t.Fatalf("unexpected token fields %+v", result)
	}

	c := sessionCookie(t, rec)
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", c)
	}
	token, err := env.cookies.TokenFromHeader(c.Name + "=" + c.Value)
	if err != nil || token != result.IDToken {
		t.Fatalf("cookie does not carry the ID token: %q, %v", token, err)
	}
	if len(env.signOuter.SignedOut()) != 0 {
		t.Fatal("admin must not be signed out")
	}
}

func TestLoginNonAdminIsSignedOut(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/session", `{"email":"other@example.com","password":"other-pass"}`, nil)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("non-admin must not receive a session cookie")
	}
	if got := env.signOuter.SignedOut(); len(got) != 1 || got[0] != auth.TestNonAdmin().UID {
		t.Fatalf("expected forced sign-out, got %v", got)
	}
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{"bad password", nil, `{"email":"test@example.com","password":"wrong"}`, http.StatusUnauthorized},
		{"disabled", identity.ErrUserDisabled, `{"email":"test@example.com","password":"x"}`, http.StatusForbidden},
		{"throttled", identity.ErrTooManyAttempts, `{"email":"test@example.com","password":"x"}`, http.StatusTooManyRequests},
		{"upstream", identity.ErrUpstream, `{"email":"test@example.com","password":"x"}`, http.StatusBadGateway},
		{"invalid body", nil, `{"email":"not-an-email","password":"x"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.provider.SignInErr = tt.err
			rec := env.do(http.MethodPost, "/session", tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetSessionAdminViaCookie(t *testing.T) {
	env := newTestEnv()
	cookie, err := env.cookies.Issue("valid-token")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := env.do(http.MethodGet, "/session", "", map[string]string{"Cookie": cookie.Name + "=" + cookie.Value})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var s Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if s.State != "admin" || s.UID != auth.TestUser().UID {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestGetSessionAnonymous(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/session", "", nil)

	var s Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if s.State != "unauthenticated" || s.UID != "" {
		t.Fatalf("unexpected session %+v", s)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatal("expected no cookie change")
	}
}

func TestGetSessionNonAdminIsUnauthenticated(t *testing.T) {
	env := newTestEnv()
	env.verifier.User = auth.TestNonAdmin()
	cookie, _ := env.cookies.Issue("other-token")

	rec := env.do(http.MethodGet, "/session", "", map[string]string{"Cookie": cookie.Name + "=" + cookie.Value})

	var s Session
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if s.State != "unauthenticated" {
		t.Fatalf("non-admin must route as unauthenticated, got %q", s.State)
	}
	if c := sessionCookie(t, rec); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected the cookie to be expired, got %+v", c)
	}
	if len(env.signOuter.SignedOut()) != 1 {
		t.Fatal("expected forced sign-out")
	}
}

func TestGetSessionCertificateFailure(t *testing.T) {
	env := newTestEnv()
	env.verifier.Error = auth.ErrCertificateFetch

	rec := env.do(http.MethodGet, "/session", "", map[string]string{"Authorization": "Bearer x"})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodDelete, "/session", "", map[string]string{"Authorization": "Bearer valid-token"})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if c := sessionCookie(t, rec); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", c)
	}
	if got := env.signOuter.SignedOut(); len(got) != 1 || got[0] != auth.TestUser().UID {
		t.Fatalf("expected tokens revoked, got %v", got)
	}
}

func TestLogoutAnonymous(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodDelete, "/session", "", nil)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(env.signOuter.SignedOut()) != 0 {
		t.Fatal("expected no revocation without an identity")
	}
}

func TestSignup(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/signup", `{"email":"new@example.com","password":"secret123"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var acct Account
	if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if acct.UID != "uid-new@example.com" || acct.Email != "new@example.com" {
		t.Fatalf("unexpected account %+v", acct)
	}
	if sessionCookie(t, rec) != nil {
		t.Fatal("signup must not issue a session")
	}
}

func TestSignupErrors(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/signup", `{"email":"test@example.com","password":"secret123"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/signup", `{"email":"x@example.com","password":"123"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short password, got %d", rec.Code)
	}
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/password-reset", `{"email":"test@example.com"}`, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := env.provider.Resets(); len(got) != 1 || got[0] != "test@example.com" {
		t.Fatalf("unexpected resets %v", got)
	}
}

func TestPasswordResetUnknownEmailIsAccepted(t *testing.T) {
	env := newTestEnv()
	env.provider.ResetErr = identity.ErrInvalidCredentials

	rec := env.do(http.MethodPost, "/password-reset", `{"email":"ghost@example.com"}`, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	env.provider.ResetErr = identity.ErrUpstream
	rec = env.do(http.MethodPost, "/password-reset", `{"email":"ghost@example.com"}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
