package internal

import (
	"log/slog"
	"slices"
	"time"
)

// DefaultRefreshMargin is how long before expiry a token is treated as stale.
const DefaultRefreshMargin = 60 * time.Second

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Token material is never logged.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMode sets the execution mode. Default: ModeHTTP.
func WithMode(m Mode) Option {
	return func(e *Engine) {
		if m != "" {
			e.mode = m
		}
	}
}

// WithUserIDFormat sets the shape of ids returned by Engine.UserID. Default: UserIDEmail.
// The value is checked when an id is resolved, not here.
func WithUserIDFormat(f UserIDFormat) Option {
	return func(e *Engine) {
		e.userIDFormat = f
	}
}

// WithDefaultScopes sets the scopes requested by the consent redirect when
// the caller names none.
func WithDefaultScopes(scopes ...string) Option {
	return func(e *Engine) {
		e.defaultScopes = slices.DeleteFunc(slices.Clone(scopes), func(s string) bool { return s == "" })
	}
}

// WithRefreshMargin overrides DefaultRefreshMargin.
func WithRefreshMargin(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.refreshMargin = d
		}
	}
}
