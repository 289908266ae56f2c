package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tokenvault/pkg/logger"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/token"
)

func TestParseUserIDFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseUserIDFormat("")
	require.NoError(t, err)
	require.Equal(t, UserIDEmail, f)

	f, err = ParseUserIDFormat("ID")
	require.NoError(t, err)
	require.Equal(t, UserIDProvider, f)

	_, err = ParseUserIDFormat("username")
	require.ErrorIs(t, err, ErrUnsupportedUserIDFormat)
}

func TestUserID_RequiresSession(t *testing.T) {
	t.Parallel()

	f := newDatastoreFixture(t)
	f.seed(t, "u1", freshCredential(), []string{"email"})

	ctx, _ := requestContext()
	_, err := f.engine.UserID(ctx)
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Zero(t, f.provider.infoCalls.Load())
	require.Zero(t, f.backend.ioCalls())
}

func TestUserID_Scopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format UserIDFormat
		scopes []string
		want   string
		err    error
	}{
		{name: "email scope with email format", format: UserIDEmail, scopes: []string{"email"}, want: "user@example.com"},
		{name: "profile scope with id format", format: UserIDProvider, scopes: []string{"profile"}, want: "42"},
		{name: "google userinfo url", format: UserIDEmail, scopes: []string{"https://www.googleapis.com/auth/userinfo.email"}, want: "user@example.com"},
		{name: "github read:user", format: UserIDProvider, scopes: []string{"read:user"}, want: "42"},
		{name: "no identity scope", format: UserIDEmail, scopes: []string{"https://www.googleapis.com/auth/drive"}, err: ErrInsufficientScope},
		{name: "no scopes at all", format: UserIDEmail, scopes: []string{}, err: ErrInsufficientScope},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newDatastoreFixture(t, WithUserIDFormat(tc.format))
			ctx, _ := requestContext()
			require.NoError(t, f.engine.SetLiveSession(ctx, &token.Scoped{Token: freshCredential(), Scopes: tc.scopes}))

			id, err := f.engine.UserID(ctx)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				require.Zero(t, f.provider.infoCalls.Load(), "userinfo must not be called without an identity scope")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, id)
		})
	}
}

func TestUserID_FetchedOncePerRequest(t *testing.T) {
	t.Parallel()

	f := newDatastoreFixture(t)
	f.seed(t, "user@example.com", freshCredential(), []string{"email"})

	ctx, _ := requestContext()
	require.NoError(t, f.engine.RequireAuthenticated(ctx, "user@example.com"))

	for range 3 {
		id, err := f.engine.UserID(ctx)
		require.NoError(t, err)
		require.Equal(t, "user@example.com", id)
	}
	require.EqualValues(t, 1, f.provider.infoCalls.Load())

	// A new session clears the resolved id.
	require.NoError(t, f.engine.SetLiveSession(ctx, &token.Scoped{Token: freshCredential(), Scopes: []string{"email"}}))
	_, err := f.engine.UserID(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, f.provider.infoCalls.Load())
}

func TestUserID_Failures(t *testing.T) {
	t.Parallel()

	t.Run("email missing from userinfo", func(t *testing.T) {
		t.Parallel()

		f := newDatastoreFixture(t)
		f.provider.info = &oauth.UserInfo{ID: "42"}
		ctx, _ := requestContext()
		require.NoError(t, f.engine.SetLiveSession(ctx, &token.Scoped{Token: freshCredential(), Scopes: []string{"email"}}))

		_, err := f.engine.UserID(ctx)
		require.ErrorIs(t, err, ErrInsufficientScope)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		f := newDatastoreFixture(t, WithUserIDFormat("username"))
		ctx, _ := requestContext()
		require.NoError(t, f.engine.SetLiveSession(ctx, &token.Scoped{Token: freshCredential(), Scopes: []string{"email"}}))

		_, err := f.engine.UserID(ctx)
		require.ErrorIs(t, err, ErrUnsupportedUserIDFormat)
		require.Zero(t, f.provider.infoCalls.Load())
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()

		f := newDatastoreFixture(t)
		f.provider.infoErr = errors.Join(oauth.ErrFetchFailed, errors.New("boom"))
		ctx, _ := requestContext()
		require.NoError(t, f.engine.SetLiveSession(ctx, &token.Scoped{Token: freshCredential(), Scopes: []string{"email"}}))

		_, err := f.engine.UserID(ctx)
		require.ErrorIs(t, err, oauth.ErrFetchFailed)
	})
}

func TestLogExtractor(t *testing.T) {
	t.Parallel()

	f := newDatastoreFixture(t)
	f.seed(t, "user@example.com", freshCredential(), []string{"email"})

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "debug", Format: "json"}, f.engine.LogExtractor())

	ctx, _ := requestContext()
	require.NoError(t, f.engine.RequireAuthenticated(ctx, "user@example.com"))
	_, err := f.engine.UserID(ctx)
	require.NoError(t, err)

	log.InfoContext(ctx, "handled")
	log.InfoContext(context.Background(), "background")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var withAuth struct {
		Auth map[string]string `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(lines[0], &withAuth))
	require.Equal(t, "datastore", withAuth.Auth["storage_method"])
	require.Equal(t, "user@example.com", withAuth.Auth["user_id"])

	var without map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &without))
	require.NotContains(t, without, "auth")
	require.NotContains(t, buf.String(), "access", "token material must not be logged")
}
