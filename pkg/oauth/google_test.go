package oauth_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/tokenvault/pkg/oauth"
)

func newGoogle(t *testing.T, handler http.HandlerFunc) *oauth.GoogleProvider {
	t.Helper()

	p, err := oauth.NewGoogleProvider(
		oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/oauth2callback",
		},
		oauth.WithHTTPClient(fakeClient(handler, "google")),
	)
	require.NoError(t, err)
	return p
}

func TestNewGoogleProvider(t *testing.T) {
	t.Parallel()

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{ClientSecret: "test-secret"})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
		require.Nil(t, p)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{ClientID: "test-id"})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
		require.Nil(t, p)
	})

	t.Run("default scopes applied", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{ClientID: "test-id", ClientSecret: "test-secret"})
		require.NoError(t, err)
		require.Equal(t, oauth.GoogleDefaultScopes(), p.Scopes())
		require.Equal(t, "google", p.Name())

		u := p.AuthCodeURL("state")
		require.Contains(t, u, "userinfo.email")
		require.Contains(t, u, "userinfo.profile")
	})

	t.Run("custom scopes", func(t *testing.T) {
		t.Parallel()
		p, err := oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			Scopes:       []string{"openid"},
		})
		require.NoError(t, err)

		u := p.AuthCodeURL("state")
		require.Contains(t, u, "openid")
		require.NotContains(t, u, "userinfo.email")
	})
}

func TestGoogleProvider_AuthCodeURL_OfflineConsent(t *testing.T) {
	t.Parallel()

	p := newGoogle(t, nil)
	u := p.AuthCodeURL("test-state", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	require.Contains(t, u, "state=test-state")
	require.Contains(t, u, "access_type=offline")
	require.Contains(t, u, "prompt=consent")
	require.Contains(t, u, "redirect_uri=https%3A%2F%2Fexample.com%2Foauth2callback")
}

func TestGoogleProvider_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "test-access-token",
				"refresh_token": "test-refresh-token",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		})

		tok, err := p.Exchange(context.Background(), "test-code", "")
		require.NoError(t, err)
		require.Equal(t, "test-access-token", tok.AccessToken)
		require.Equal(t, "test-refresh-token", tok.RefreshToken)
	})

	t.Run("custom redirect URI", func(t *testing.T) {
		t.Parallel()

		var got atomic.Value
		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			got.Store(r.FormValue("redirect_uri"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "a", "token_type": "Bearer"})
		})

		_, err := p.Exchange(context.Background(), "test-code", "https://example.com/override")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/override", got.Load())
	})

	t.Run("invalid code", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		})

		_, err := p.Exchange(context.Background(), "bad-code", "")
		require.ErrorIs(t, err, oauth.ErrExchangeFailed)
	})
}

func TestGoogleProvider_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("uses refresh grant and keeps old refresh token", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			require.Equal(t, "refresh_token", r.FormValue("grant_type"))
			require.Equal(t, "rt", r.FormValue("refresh_token"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "new-access",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		})

		// A still-valid access token must not short-circuit the refresh.
		old := &oauth2.Token{AccessToken: "old-access", RefreshToken: "rt"}
		fresh, err := p.Refresh(context.Background(), old)
		require.NoError(t, err)
		require.Equal(t, "new-access", fresh.AccessToken)
		require.Equal(t, "rt", fresh.RefreshToken)
		require.False(t, fresh.Expiry.IsZero())
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("missing refresh token", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, nil)
		_, err := p.Refresh(context.Background(), &oauth2.Token{AccessToken: "a"})
		require.ErrorIs(t, err, oauth.ErrMissingRefreshToken)

		_, err = p.Refresh(context.Background(), nil)
		require.ErrorIs(t, err, oauth.ErrMissingRefreshToken)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		})

		_, err := p.Refresh(context.Background(), &oauth2.Token{RefreshToken: "revoked"})
		require.ErrorIs(t, err, oauth.ErrRefreshFailed)
	})
}

func TestGoogleProvider_FetchUserInfo(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"id":             "12345",
				"email":          "user@example.com",
				"name":           "Test User",
				"picture":        "https://example.com/photo.jpg",
				"verified_email": true,
			})
		})

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "12345", user.ID)
		require.Equal(t, "user@example.com", user.Email)
		require.Equal(t, "Test User", user.Name)
		require.True(t, user.EmailVerified)
	})

	t.Run("profile scope only", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "12345", "name": "Test User"})
		})

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.NoError(t, err)
		require.Equal(t, "12345", user.ID)
		require.Empty(t, user.Email)
		require.False(t, user.EmailVerified)
	})

	t.Run("non-OK status", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("forbidden"))
		})

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrRequestFailed)
		require.Nil(t, user)
	})

	t.Run("bad JSON", func(t *testing.T) {
		t.Parallel()

		p := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not-json"))
		})

		user, err := p.FetchUserInfo(context.Background(), &oauth2.Token{AccessToken: "test-token"})
		require.ErrorIs(t, err, oauth.ErrDecodeFailed)
		require.Nil(t, user)
	})
}
