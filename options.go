package tokenvault

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/tokenvault/internal"
	"github.com/dmitrymomot/tokenvault/pkg/cookie"
)

// DefaultRefreshMargin is how long before expiry a token is treated as stale.
const DefaultRefreshMargin = internal.DefaultRefreshMargin

// WithLogger sets the engine logger. Token material is never logged.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return internal.WithClock(now)
}

// WithMode sets the execution mode. Default: ModeHTTP.
func WithMode(m Mode) Option {
	return internal.WithMode(m)
}

// WithUserIDFormat sets the shape of ids returned by Engine.UserID. Default: UserIDEmail.
func WithUserIDFormat(f UserIDFormat) Option {
	return internal.WithUserIDFormat(f)
}

// WithDefaultScopes sets the scopes requested when the caller names none.
func WithDefaultScopes(scopes ...string) Option {
	return internal.WithDefaultScopes(scopes...)
}

// WithRefreshMargin overrides DefaultRefreshMargin.
func WithRefreshMargin(d time.Duration) Option {
	return internal.WithRefreshMargin(d)
}

// WithSuccessRedirect redirects to url after a successful callback.
func WithSuccessRedirect(url string) HandlersOption {
	return internal.WithSuccessRedirect(url)
}

// WithFailureRedirect redirects to url after a failed callback.
func WithFailureRedirect(url string) HandlersOption {
	return internal.WithFailureRedirect(url)
}

// WithSuccessHandler runs fn after a successful callback.
func WithSuccessHandler(fn http.HandlerFunc) HandlersOption {
	return internal.WithSuccessHandler(fn)
}

// WithFailureHandler runs fn after a failed callback.
func WithFailureHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) HandlersOption {
	return internal.WithFailureHandler(fn)
}

// WithCallbackURL overrides the redirect URI sent on code exchange.
func WithCallbackURL(url string) HandlersOption {
	return internal.WithCallbackURL(url)
}

// WithStateCookie sets the cookie manager and name used for the OAuth state.
func WithStateCookie(m *cookie.Manager, name string) HandlersOption {
	return internal.WithStateCookie(m, name)
}
