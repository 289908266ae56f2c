package tokenstore

import "errors"

var (
	// ErrNotFound is returned when no record exists for the key.
	ErrNotFound = errors.New("tokenstore: record not found")

	// ErrMalformedRecord is returned when a stored record cannot be decoded.
	ErrMalformedRecord = errors.New("tokenstore: malformed record")

	// ErrUserIDRequired is returned when a keyed backend is used without a user id.
	ErrUserIDRequired = errors.New("tokenstore: user id required")

	// ErrUnsupportedStorageMethod is returned for an unknown or unusable storage method.
	ErrUnsupportedStorageMethod = errors.New("tokenstore: unsupported storage method")

	// ErrHTTPOnly is joined with ErrUnsupportedStorageMethod when the cookie
	// backend runs without a request/response pair.
	ErrHTTPOnly = errors.New("tokenstore: cookie storage requires an HTTP request")

	// ErrUnsupportedDriver is returned for an unknown datastore driver.
	ErrUnsupportedDriver = errors.New("tokenstore: unsupported datastore driver")

	// ErrInvalidConfig is returned when a driver is missing required settings.
	ErrInvalidConfig = errors.New("tokenstore: invalid configuration")

	// ErrSaveFailed wraps driver write failures.
	ErrSaveFailed = errors.New("tokenstore: save failed")

	// ErrLoadFailed wraps driver read failures other than a missing record.
	ErrLoadFailed = errors.New("tokenstore: load failed")
)
