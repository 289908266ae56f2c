// Package internal implements the token engine behind the tokenvault package.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/tokenvault" instead, which re-exports the public API.
//
// # Core Types
//
//   - Engine: authenticates requests from stored, encrypted OAuth2 tokens,
//     refreshes stale ones and resolves user ids.
//   - Client: the live OAuth client handle of an authenticated session.
//   - Handlers: the consent redirect and code exchange callback.
//   - Mode: the execution model (HTTP or single invocation).
//   - UserIDFormat: which userinfo field identifies a user.
//
// # Request Scope
//
// Every operation works on a per-request session cache carried by the
// context. Engine.Middleware attaches one to each HTTP request; WithRequest
// does the same by hand. In ModeSingleInvocation a process-wide scope is
// used when the context carries none, until Engine.EndInvocation.
//
// # Authentication
//
// RequireAuthenticated loads the stored record, decrypts it and installs it
// in the request cache. A token without an expiry, or one that expires within
// the refresh margin, is refreshed once and persisted again before install.
// Subsequent calls in the same request return the cached session without I/O.
//
// # Errors
//
// Failures are reported with package-level sentinel errors checked via
// errors.Is. Wrapped causes are joined with errors.Join.
package internal
