package internal

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/tokenvault/pkg/logger"
)

// UserIDFormat selects which userinfo field identifies a user.
type UserIDFormat string

const (
	// UserIDEmail identifies users by email address.
	UserIDEmail UserIDFormat = "email"
	// UserIDProvider identifies users by the provider's opaque account id.
	UserIDProvider UserIDFormat = "id"
)

// ParseUserIDFormat converts a configuration value into a UserIDFormat. Empty selects UserIDEmail.
func ParseUserIDFormat(s string) (UserIDFormat, error) {
	switch f := UserIDFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return UserIDEmail, nil
	case UserIDEmail, UserIDProvider:
		return f, nil
	default:
		return "", ErrUnsupportedUserIDFormat
	}
}

// identityScopes grant access to the userinfo endpoint. Google accepts the
// short OpenID names and the full userinfo URLs; GitHub's /user needs read:user or user.
var identityScopes = map[string]struct{}{
	"email":   {},
	"profile": {},
	"https://www.googleapis.com/auth/userinfo.email":   {},
	"https://www.googleapis.com/auth/userinfo.profile": {},
	"user:email": {},
	"read:user":  {},
	"user":       {},
}

// HasIdentityScope reports whether scopes allow resolving a user id.
func HasIdentityScope(scopes []string) bool {
	for _, s := range scopes {
		if _, ok := identityScopes[s]; ok {
			return true
		}
	}
	return false
}

// UserID resolves the stable user id of the existing session.
// The provider's userinfo endpoint is called at most once per request.
func (e *Engine) UserID(ctx context.Context) (string, error) {
	st, err := e.state(ctx)
	if err != nil {
		return "", err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := requireSession(st); err != nil {
		return "", err
	}
	if id := st.resolvedUserID(); id != "" {
		return id, nil
	}
	if !HasIdentityScope(st.scoped.Scopes) {
		return "", ErrInsufficientScope
	}
	if e.userIDFormat != UserIDEmail && e.userIDFormat != UserIDProvider {
		return "", ErrUnsupportedUserIDFormat
	}

	info, err := e.provider.FetchUserInfo(ctx, st.scoped.Token.OAuth2())
	if err != nil {
		return "", err
	}

	id := info.ID
	if e.userIDFormat == UserIDEmail {
		id = info.Email
	}
	if id == "" {
		return "", errors.Join(ErrInsufficientScope, errors.New("userinfo has no "+string(e.userIDFormat)))
	}

	st.userID.Store(id)
	return id, nil
}

// LogExtractor adds the storage method and, once resolved, the user id of the
// current request to log records as an "auth" group.
func (e *Engine) LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		st, ok := requestStateFrom(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		attrs := []any{slog.String("storage_method", string(e.StorageMethod()))}
		if id := st.resolvedUserID(); id != "" {
			attrs = append(attrs, slog.String("user_id", id))
		}
		return slog.Group("auth", attrs...), true
	}
}
