package internal

import (
	"errors"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

var (
	// ErrUnknownUser is returned when no token record exists for the caller.
	ErrUnknownUser = errors.New("tokenvault: user has no stored token")

	// ErrScopedTokenRequired is returned when a token record lacks its token or scopes.
	ErrScopedTokenRequired = errors.New("tokenvault: scoped token with token and scopes required")

	// ErrUserIDRequired is returned when the storage method needs a user id and none was given.
	ErrUserIDRequired = tokenstore.ErrUserIDRequired

	// ErrUnsupportedStorageMethod is returned for an unknown storage method or a
	// cookie backend used without a request/response pair.
	ErrUnsupportedStorageMethod = tokenstore.ErrUnsupportedStorageMethod

	// ErrDecryptionFailed is returned when a stored token cannot be decrypted.
	ErrDecryptionFailed = cipher.ErrDecryptionFailed

	// ErrNotAuthenticated is returned by operations that need an existing session.
	ErrNotAuthenticated = errors.New("tokenvault: not authenticated")

	// ErrInsufficientScope is returned when neither an email nor a profile scope was granted.
	ErrInsufficientScope = errors.New("tokenvault: email or profile scope required")

	// ErrUnsupportedUserIDFormat is returned for an unknown user id format.
	ErrUnsupportedUserIDFormat = errors.New("tokenvault: unsupported user id format")

	// ErrUnsupportedExecutionMode is returned for an unknown execution mode.
	ErrUnsupportedExecutionMode = errors.New("tokenvault: unsupported execution mode")

	// ErrMissingRequestContext is returned in HTTP mode when the context carries no request scope.
	ErrMissingRequestContext = errors.New("tokenvault: missing request context")

	// ErrRefreshFailed wraps provider refresh errors.
	ErrRefreshFailed = errors.New("tokenvault: token refresh failed")

	// ErrInvalidState is returned by the callback when the OAuth state does not match.
	ErrInvalidState = errors.New("tokenvault: invalid oauth state")

	// ErrInvalidCallback is returned when the callback carries a provider error or no code.
	ErrInvalidCallback = errors.New("tokenvault: invalid oauth callback")
)
