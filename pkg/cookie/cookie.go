package cookie

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Errors.
var (
	ErrNotFound = errors.New("cookie: not found")
	ErrDecode   = errors.New("cookie: failed to decode value")
	ErrEncode   = errors.New("cookie: failed to encode value")
	ErrTooLarge = errors.New("cookie: encoded cookie exceeds size limit")
)

// MaxSize is the largest Set-Cookie value, attributes included, that browsers are required to keep.
const MaxSize = 4096

// SecureMode controls the Secure attribute.
type SecureMode int

const (
	// SecureAuto sets Secure when the request arrived over HTTPS.
	SecureAuto SecureMode = iota
	// SecureAlways always sets Secure.
	SecureAlways
	// SecureNever never sets Secure.
	SecureNever
)

// Manager handles cookie operations.
type Manager struct {
	domain   string
	path     string
	secure   SecureMode
	httpOnly bool
	sameSite http.SameSite
}

// Option configures the Manager.
type Option func(*Manager)

// New creates a cookie Manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the cookie path.
func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets how the Secure flag is chosen.
func WithSecure(mode SecureMode) Option {
	return func(m *Manager) {
		m.secure = mode
	}
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) {
		m.sameSite = ss
	}
}

// Get returns a raw cookie value.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a raw cookie. r decides the Secure flag in SecureAuto mode and may be nil.
func (m *Manager) Set(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(r, name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, m.cookie(r, name, "", -1))
}

// GetJSON reads a cookie written by SetJSON into dest.
func (m *Manager) GetJSON(r *http.Request, name string, dest any) error {
	raw, err := m.Get(r, name)
	if err != nil {
		return err
	}

	// Values are query-escaped because net/http strips quotes from cookie values.
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	if err := json.Unmarshal([]byte(decoded), dest); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// SetJSON writes v as a query-escaped JSON cookie.
// Nothing is written and ErrTooLarge is returned when the cookie would exceed MaxSize.
func (m *Manager) SetJSON(w http.ResponseWriter, r *http.Request, name string, v any, maxAge int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}

	c := m.cookie(r, name, url.QueryEscape(string(data)), maxAge)
	if n := len(c.String()); n > MaxSize {
		return errors.Join(ErrTooLarge, fmt.Errorf("%s is %d bytes", name, n))
	}
	http.SetCookie(w, c)
	return nil
}

// IsSecureRequest reports whether r arrived over HTTPS, directly or via a proxy.
func IsSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (m *Manager) cookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	var secure bool
	switch m.secure {
	case SecureAlways:
		secure = true
	case SecureNever:
		secure = false
	default:
		secure = IsSecureRequest(r)
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
