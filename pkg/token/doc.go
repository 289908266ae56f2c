// Package token defines the OAuth2 credential records handled by tokenvault.
//
// A [Credential] is the provider-issued token set (access token, refresh token,
// expiry in epoch milliseconds). A [Scoped] pairs a credential with the scopes
// it was granted under, and an [Encrypted] is the at-rest form where the
// credential has been serialized and encrypted into an opaque string.
//
// Persisted records (cookie values, datastore rows) always use the JSON shape:
//
//	{"token": "<ciphertext>", "scopes": ["email", "profile"]}
//
// # Well-formedness
//
// A scoped record is well-formed only when both fields are present. An empty
// scope list is fine, a missing one is not:
//
//	token.Scoped{Token: cred, Scopes: []string{}}.Valid() // true
//	token.Scoped{Token: cred}.Valid()                     // false
//
// # Unknown fields
//
// Credential keeps any JSON fields it does not model and writes them back
// unchanged, so provider-specific extras survive an encrypt/decrypt cycle.
package token
