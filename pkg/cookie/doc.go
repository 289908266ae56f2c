// Package cookie provides small HTTP cookie helpers used by the cookie token backend
// and the OAuth state check.
//
// The Manager applies consistent attributes (path, domain, HttpOnly, SameSite) and
// picks the Secure flag per request: by default it is set when the request came in
// over TLS or carries "X-Forwarded-Proto: https".
//
// # Usage
//
//	m := cookie.New(cookie.WithSameSite(http.SameSiteLaxMode))
//	m.Set(w, r, "theme", "dark", 86400)
//	value, err := m.Get(r, "theme")
//
// JSON values are query-escaped before being written, since net/http drops
// double quotes from cookie values:
//
//	err := m.SetJSON(w, r, "oauth2token", record, 0)
//	var rec Record
//	err = m.GetJSON(r, "oauth2token", &rec)
//
// # Errors
//
//   - [ErrNotFound]: cookie does not exist
//   - [ErrDecode]: value is not valid escaped JSON
//   - [ErrEncode]: value could not be marshaled
//   - [ErrTooLarge]: the encoded cookie is over [MaxSize] bytes and was not written
package cookie
