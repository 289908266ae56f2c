package tokenvault

import (
	"errors"

	"github.com/dmitrymomot/tokenvault/internal"
)

// Engine errors. Check with errors.Is.
var (
	ErrUnknownUser              = internal.ErrUnknownUser
	ErrScopedTokenRequired      = internal.ErrScopedTokenRequired
	ErrUserIDRequired           = internal.ErrUserIDRequired
	ErrUnsupportedStorageMethod = internal.ErrUnsupportedStorageMethod
	ErrDecryptionFailed         = internal.ErrDecryptionFailed
	ErrNotAuthenticated         = internal.ErrNotAuthenticated
	ErrInsufficientScope        = internal.ErrInsufficientScope
	ErrUnsupportedUserIDFormat  = internal.ErrUnsupportedUserIDFormat
	ErrUnsupportedExecutionMode = internal.ErrUnsupportedExecutionMode
	ErrMissingRequestContext    = internal.ErrMissingRequestContext
	ErrRefreshFailed            = internal.ErrRefreshFailed
	ErrInvalidState             = internal.ErrInvalidState
	ErrInvalidCallback          = internal.ErrInvalidCallback
)

var (
	// ErrInvalidConfig is returned by LoadConfig, Config.Validate and Open.
	ErrInvalidConfig = errors.New("tokenvault: invalid configuration")

	// ErrOpenFailed is returned by Open when a dependency cannot be built or reached.
	ErrOpenFailed = errors.New("tokenvault: open failed")
)
