package token

import (
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// ErrMalformed is returned when a credential cannot be decoded.
var ErrMalformed = errors.New("token: malformed credential")

// Credential is an OAuth2 token set as issued by the provider.
// Fields the type does not model are kept in Extra and written back as-is.
type Credential struct {
	Extra        map[string]json.RawMessage
	AccessToken  string
	TokenType    string
	RefreshToken string
	IDToken      string
	Scope        string
	ExpiryDate   int64 // epoch milliseconds, 0 = unknown
}

// Scoped pairs a credential with the scopes it was granted under.
type Scoped struct {
	Token  *Credential `json:"token"`
	Scopes []string    `json:"scopes"`
}

// Encrypted is the at-rest form of Scoped: Token holds ciphertext.
type Encrypted struct {
	Token  string   `json:"token"`
	Scopes []string `json:"scopes"`
}

// Valid reports whether both token and scopes are present.
func (s *Scoped) Valid() bool {
	return s != nil && s.Token != nil && s.Scopes != nil
}

// HasScope reports whether scope was granted.
func (s *Scoped) HasScope(scope string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Scopes, scope)
}

// Valid reports whether both ciphertext and scopes are present.
func (e *Encrypted) Valid() bool {
	return e != nil && e.Token != "" && e.Scopes != nil
}

// Expiry returns the expiry as time.Time; zero when unknown.
func (c *Credential) Expiry() time.Time {
	if c == nil || c.ExpiryDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiryDate)
}

// Stale reports whether the credential has no expiry or expires within margin of now.
func (c *Credential) Stale(now time.Time, margin time.Duration) bool {
	if c == nil || c.ExpiryDate == 0 {
		return true
	}
	return c.ExpiryDate < now.Add(margin).UnixMilli()
}

// Clone returns a deep copy.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Extra != nil {
		cp.Extra = make(map[string]json.RawMessage, len(c.Extra))
		for k, v := range c.Extra {
			cp.Extra[k] = slices.Clone(v)
		}
	}
	return &cp
}

// OAuth2 converts the credential into an *oauth2.Token for use with x/oauth2.
func (c *Credential) OAuth2() *oauth2.Token {
	if c == nil {
		return nil
	}
	t := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    c.TokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry(),
	}
	extra := map[string]any{}
	if c.IDToken != "" {
		extra["id_token"] = c.IDToken
	}
	if c.Scope != "" {
		extra["scope"] = c.Scope
	}
	if len(extra) > 0 {
		t = t.WithExtra(extra)
	}
	return t
}

// FromOAuth2 converts an *oauth2.Token into a Credential.
func FromOAuth2(t *oauth2.Token) *Credential {
	if t == nil {
		return nil
	}
	c := &Credential{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if !t.Expiry.IsZero() {
		c.ExpiryDate = t.Expiry.UnixMilli()
	}
	if v, ok := t.Extra("id_token").(string); ok {
		c.IDToken = v
	}
	if v, ok := t.Extra("scope").(string); ok {
		c.Scope = v
	}
	return c
}

var knownFields = []string{"access_token", "token_type", "refresh_token", "id_token", "scope", "expiry_date"}

// MarshalJSON writes known fields alongside preserved extras.
func (c Credential) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+len(knownFields))
	for k, v := range c.Extra {
		out[k] = v
	}
	setString := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	setString("access_token", c.AccessToken)
	setString("token_type", c.TokenType)
	setString("refresh_token", c.RefreshToken)
	setString("id_token", c.IDToken)
	setString("scope", c.Scope)
	if c.ExpiryDate != 0 {
		out["expiry_date"] = c.ExpiryDate
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads known fields and keeps the rest in Extra.
// expiry_date may be a number, a numeric string or an RFC 3339 timestamp;
// anything else leaves it zero, which marks the credential stale.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	if raw == nil {
		return ErrMalformed
	}

	*c = Credential{}
	readString := func(key string, dst *string) {
		v, ok := raw[key]
		if !ok {
			return
		}
		_ = json.Unmarshal(v, dst)
	}
	readString("access_token", &c.AccessToken)
	readString("token_type", &c.TokenType)
	readString("refresh_token", &c.RefreshToken)
	readString("id_token", &c.IDToken)
	readString("scope", &c.Scope)
	if v, ok := raw["expiry_date"]; ok {
		c.ExpiryDate = parseExpiry(v)
	}

	for _, k := range knownFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

func parseExpiry(v json.RawMessage) int64 {
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli()
	}
	return 0
}
