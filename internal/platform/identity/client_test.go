package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func newTestClient(serverURL string) *Client {
	return NewClient(http.DefaultClient, "test-key", WithBaseURL(serverURL))
}

func writeProviderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}

func TestSignIn(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/accounts:signInWithPassword" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key, got %q", r.URL.Query().Get("key"))
		}
		var body passwordRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Email != "admin@example.com" || body.Password != "secret1" || !body.ReturnSecureToken {
			t.Errorf("unexpected body %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "uid-1",
			"email":        "admin@example.com",
			"idToken":      "id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
		})
	})
	defer srv.Close()

	got, err := newTestClient(srv.URL).SignIn(context.Background(), "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UID != "uid-1" || got.IDToken != "id-token" || got.ExpiresIn != 3600 {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestSignUp(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts:signUp" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId": "uid-2",
			"email":   "new@example.com",
			"idToken": "id-token-2",
		})
	})
	defer srv.Close()

	got, err := newTestClient(srv.URL).SignUp(context.Background(), "new@example.com", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UID != "uid-2" {
		t.Fatalf("expected uid-2, got %s", got.UID)
	}
}

func TestSendPasswordReset(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts:sendOobCode" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body oobRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RequestType != "PASSWORD_RESET" || body.Email != "admin@example.com" {
			t.Errorf("unexpected body %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "admin@example.com"})
	})
	defer srv.Close()

	if err := newTestClient(srv.URL).SendPasswordReset(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProviderErrorMapping(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"EMAIL_EXISTS", ErrEmailExists},
		{"WEAK_PASSWORD : Password should be at least 6 characters", ErrWeakPassword},
		{"INVALID_EMAIL", ErrInvalidEmail},
		{"USER_DISABLED", ErrUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER : Access temporarily disabled", ErrTooManyAttempts},
		{"SOMETHING_NEW", ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			srv := newTestServer(func(w http.ResponseWriter, _ *http.Request) {
				writeProviderError(w, http.StatusBadRequest, tt.message)
			})
			defer srv.Close()

			_, err := newTestClient(srv.URL).SignIn(context.Background(), "a@example.com", "pw")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %T", err)
			}
			if pe.Status != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", pe.Status)
			}
		})
	}
}

func TestServerErrorIsUpstream(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json"))
	})
	defer srv.Close()

	err := newTestClient(srv.URL).SendPasswordReset(context.Background(), "a@example.com")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestTransportErrorIsUpstream(t *testing.T) {
	srv := newTestServer(func(http.ResponseWriter, *http.Request) {})
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).SignIn(context.Background(), "a@example.com", "pw")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestProviderCode(t *testing.T) {
	if got := providerCode("WEAK_PASSWORD : short"); got != "WEAK_PASSWORD" {
		t.Fatalf("got %q", got)
	}
	if got := providerCode(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestWithBaseURLTrimsSlash(t *testing.T) {
	c := NewClient(http.DefaultClient, "", WithBaseURL("http://127.0.0.1:7110/identitytoolkit.googleapis.com/"))
	if c.baseURL != "http://127.0.0.1:7110/identitytoolkit.googleapis.com" {
		t.Fatalf("unexpected base URL %s", c.baseURL)
	}
}
