package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrUnsupportedProvider is returned by New for an unknown provider name.
	ErrUnsupportedProvider = errors.New("oauth: unsupported provider")

	// ErrMissingRefreshToken is returned when a token cannot be refreshed.
	ErrMissingRefreshToken = errors.New("oauth: missing refresh token")

	// ErrExchangeFailed wraps authorization code exchange failures.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrRefreshFailed wraps refresh-token grant failures.
	ErrRefreshFailed = errors.New("oauth: token refresh failed")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-OK status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrClientSecretFile is returned when a client secret file cannot be read or parsed.
	ErrClientSecretFile = errors.New("oauth: invalid client secret file")
)
