package tokenstore

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tokenvault/pkg/cookie"
	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// DefaultCookieName is the cookie holding the encrypted record.
const DefaultCookieName = Namespace

// CookieOption configures the Cookie backend.
type CookieOption func(*Cookie)

// WithCookieName overrides the cookie name.
func WithCookieName(name string) CookieOption {
	return func(c *Cookie) {
		if name != "" {
			c.name = name
		}
	}
}

// WithCookieMaxAge sets Max-Age in seconds. Zero (default) makes it a session cookie.
func WithCookieMaxAge(seconds int) CookieOption {
	return func(c *Cookie) {
		if seconds >= 0 {
			c.maxAge = seconds
		}
	}
}

// WithCookieManager replaces the cookie manager (domain, path, SameSite, Secure mode).
func WithCookieManager(m *cookie.Manager) CookieOption {
	return func(c *Cookie) {
		if m != nil {
			c.manager = m
		}
	}
}

// Cookie stores the record as query-escaped JSON in a single cookie.
// It needs no user id but only works with a live request/response pair.
type Cookie struct {
	manager *cookie.Manager
	name    string
	maxAge  int
}

// NewCookie creates a cookie backend.
func NewCookie(opts ...CookieOption) *Cookie {
	c := &Cookie{
		manager: cookie.New(),
		name:    DefaultCookieName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Method returns MethodCookie.
func (c *Cookie) Method() Method { return MethodCookie }

// RequiresUserID returns false.
func (c *Cookie) RequiresUserID() bool { return false }

// Name returns the cookie name.
func (c *Cookie) Name() string { return c.name }

// Load reads the record from the request cookie.
func (c *Cookie) Load(_ context.Context, r *http.Request, _ string) (*token.Encrypted, error) {
	if r == nil {
		return nil, errors.Join(ErrUnsupportedStorageMethod, ErrHTTPOnly)
	}

	var rec token.Encrypted
	if err := c.manager.GetJSON(r, c.name, &rec); err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	return &rec, nil
}

// Save writes the record cookie on the response.
func (c *Cookie) Save(_ context.Context, w http.ResponseWriter, r *http.Request, _ string, rec *token.Encrypted) error {
	if w == nil {
		return errors.Join(ErrUnsupportedStorageMethod, ErrHTTPOnly)
	}
	if err := c.manager.SetJSON(w, r, c.name, rec, c.maxAge); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Delete expires the record cookie.
func (c *Cookie) Delete(_ context.Context, w http.ResponseWriter, r *http.Request, _ string) error {
	if w == nil {
		return errors.Join(ErrUnsupportedStorageMethod, ErrHTTPOnly)
	}
	c.manager.Delete(w, r, c.name)
	return nil
}

var _ Backend = (*Cookie)(nil)
