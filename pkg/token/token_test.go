package token_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

func TestScoped_Valid(t *testing.T) {
	t.Parallel()

	cred := &token.Credential{AccessToken: "a"}

	require.True(t, (&token.Scoped{Token: cred, Scopes: []string{}}).Valid())
	require.True(t, (&token.Scoped{Token: cred, Scopes: []string{"email"}}).Valid())
	require.False(t, (&token.Scoped{Token: cred}).Valid())
	require.False(t, (&token.Scoped{Scopes: []string{}}).Valid())

	var nilScoped *token.Scoped
	require.False(t, nilScoped.Valid())
}

func TestScoped_JSONShape(t *testing.T) {
	t.Parallel()

	t.Run("empty scopes decode as present", func(t *testing.T) {
		t.Parallel()

		var s token.Scoped
		require.NoError(t, json.Unmarshal([]byte(`{"token":{"a":1},"scopes":[]}`), &s))
		require.True(t, s.Valid())
		require.Empty(t, s.Scopes)
	})

	t.Run("missing scopes decode as absent", func(t *testing.T) {
		t.Parallel()

		var s token.Scoped
		require.NoError(t, json.Unmarshal([]byte(`{"token":{"a":1}}`), &s))
		require.False(t, s.Valid())
	})
}

func TestEncrypted_Valid(t *testing.T) {
	t.Parallel()

	require.True(t, (&token.Encrypted{Token: "ct", Scopes: []string{}}).Valid())
	require.False(t, (&token.Encrypted{Token: "", Scopes: []string{}}).Valid())
	require.False(t, (&token.Encrypted{Token: "ct"}).Valid())
}

func TestCredential_PreservesUnknownFields(t *testing.T) {
	t.Parallel()

	in := `{"access_token":"at","refresh_token":"rt","expiry_date":1700000000000,"a":1,"nested":{"b":[1,2]}}`

	var c token.Credential
	require.NoError(t, json.Unmarshal([]byte(in), &c))
	require.Equal(t, "at", c.AccessToken)
	require.Equal(t, "rt", c.RefreshToken)
	require.Equal(t, int64(1700000000000), c.ExpiryDate)
	require.Len(t, c.Extra, 2)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, in, string(out))
}

func TestCredential_ExpiryFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "number", in: `{"expiry_date":1700000000000}`, want: 1700000000000},
		{name: "numeric string", in: `{"expiry_date":"1700000000000"}`, want: 1700000000000},
		{name: "rfc3339", in: `{"expiry_date":"2023-11-14T22:13:20Z"}`, want: 1700000000000},
		{name: "garbage", in: `{"expiry_date":"soon"}`, want: 0},
		{name: "missing", in: `{}`, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var c token.Credential
			require.NoError(t, json.Unmarshal([]byte(tc.in), &c))
			require.Equal(t, tc.want, c.ExpiryDate)
		})
	}
}

func TestCredential_UnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var c token.Credential
	require.ErrorIs(t, json.Unmarshal([]byte(`null`), &c), token.ErrMalformed)
	require.Error(t, json.Unmarshal([]byte(`"str"`), &c))
}

func TestCredential_Stale(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	margin := time.Minute

	require.True(t, (&token.Credential{}).Stale(now, margin), "no expiry is stale")
	require.True(t, (&token.Credential{ExpiryDate: now.Add(30 * time.Second).UnixMilli()}).Stale(now, margin))
	require.True(t, (&token.Credential{ExpiryDate: now.Add(-time.Hour).UnixMilli()}).Stale(now, margin))
	require.False(t, (&token.Credential{ExpiryDate: now.Add(2 * time.Minute).UnixMilli()}).Stale(now, margin))
}

func TestCredential_OAuth2RoundTrip(t *testing.T) {
	t.Parallel()

	expiry := time.UnixMilli(1_700_000_000_000)
	src := (&oauth2.Token{
		AccessToken:  "at",
		TokenType:    "Bearer",
		RefreshToken: "rt",
		Expiry:       expiry,
	}).WithExtra(map[string]any{"id_token": "idt", "scope": "email profile"})

	c := token.FromOAuth2(src)
	require.Equal(t, "at", c.AccessToken)
	require.Equal(t, "rt", c.RefreshToken)
	require.Equal(t, "idt", c.IDToken)
	require.Equal(t, "email profile", c.Scope)
	require.Equal(t, expiry.UnixMilli(), c.ExpiryDate)

	back := c.OAuth2()
	require.Equal(t, "at", back.AccessToken)
	require.Equal(t, "rt", back.RefreshToken)
	require.True(t, back.Expiry.Equal(expiry))
	require.Equal(t, "idt", back.Extra("id_token"))

	require.Nil(t, token.FromOAuth2(nil))
}

func TestCredential_Clone(t *testing.T) {
	t.Parallel()

	c := &token.Credential{AccessToken: "at", Extra: map[string]json.RawMessage{"a": json.RawMessage(`1`)}}
	cp := c.Clone()
	cp.AccessToken = "changed"
	cp.Extra["a"] = json.RawMessage(`2`)

	require.Equal(t, "at", c.AccessToken)
	require.Equal(t, json.RawMessage(`1`), c.Extra["a"])
}
