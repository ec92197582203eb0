package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"
)

const tokenKey = "idToken"

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Name   string
	Secret string
	MaxAge time.Duration
	Secure bool
}

// CookieSessions stores the signed-in ID token in a signed, encrypted cookie.
type CookieSessions struct {
	name  string
	store *sessions.CookieStore
}

// NewCookieSessions builds a cookie store with keys derived from the secret.
func NewCookieSessions(cfg CookieConfig) *CookieSessions {
	hashKey, blockKey := cookieKeys([]byte(cfg.Secret))
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.MaxAge(int(cfg.MaxAge.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Secure
	store.Options.SameSite = http.SameSiteLaxMode
	return &CookieSessions{name: cfg.Name, store: store}
}

// cookieKeys derives an HMAC-SHA256 key and an AES-256 key from the secret.
// Each key comes from its own HKDF expansion so they share no material.
func cookieKeys(secret []byte) (hashKey, blockKey []byte) {
	return deriveKey(secret, "company-admin session hash", 64), deriveKey(secret, "company-admin session block", 32)
}

func deriveKey(secret []byte, info string, size int) []byte {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		panic(fmt.Sprintf("derive session key: %v", err))
	}
	return key
}

// Name returns the cookie name.
func (c *CookieSessions) Name() string {
	return c.name
}

// Issue returns a cookie carrying idToken.
func (c *CookieSessions) Issue(idToken string) (*http.Cookie, error) {
	if idToken == "" {
		return nil, errors.New("empty ID token")
	}
	encoded, err := securecookie.EncodeMulti(c.name, map[any]any{tokenKey: idToken}, c.store.Codecs...)
	if err != nil {
		return nil, err
	}
	return sessions.NewCookie(c.name, encoded, c.store.Options), nil
}

// Expire returns a cookie that deletes the session in the browser.
func (c *CookieSessions) Expire() *http.Cookie {
	opts := *c.store.Options
	opts.MaxAge = -1
	return sessions.NewCookie(c.name, "", &opts)
}

// TokenFromHeader extracts the ID token from a raw Cookie header. It returns
// ErrNoToken when the cookie is absent and ErrInvalidToken when it fails to decode.
func (c *CookieSessions) TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return "", ErrNoToken
	}
	for _, ck := range cookies {
		if ck.Name != c.name {
			continue
		}
		values := map[any]any{}
		if err := securecookie.DecodeMulti(c.name, ck.Value, &values, c.store.Codecs...); err != nil {
			return "", ErrInvalidToken
		}
		token, _ := values[tokenKey].(string)
		if token == "" {
			return "", ErrInvalidToken
		}
		return token, nil
	}
	return "", ErrNoToken
}
