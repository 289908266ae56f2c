package tokenstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tokenvault/pkg/token"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, tokenstore.Key) (*token.Encrypted, error) {
	return nil, f.err
}

func (f failingStore) Put(context.Context, tokenstore.Key, *token.Encrypted) error { return f.err }

func (f failingStore) Delete(context.Context, tokenstore.Key) error { return f.err }

func TestDatastoreBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("requires user id", func(t *testing.T) {
		t.Parallel()

		b := tokenstore.NewDatastore(tokenstore.NewMemoryStore())
		require.Equal(t, tokenstore.MethodDatastore, b.Method())
		require.True(t, b.RequiresUserID())

		_, err := b.Load(ctx, nil, "")
		require.ErrorIs(t, err, tokenstore.ErrUserIDRequired)
		require.ErrorIs(t, b.Save(ctx, nil, nil, "", &token.Encrypted{}), tokenstore.ErrUserIDRequired)
		require.ErrorIs(t, b.Delete(ctx, nil, nil, ""), tokenstore.ErrUserIDRequired)
	})

	t.Run("users do not share records", func(t *testing.T) {
		t.Parallel()

		b := tokenstore.NewDatastore(tokenstore.NewMemoryStore())
		require.NoError(t, b.Save(ctx, nil, nil, "alice", &token.Encrypted{Token: "a", Scopes: []string{}}))
		require.NoError(t, b.Save(ctx, nil, nil, "bob", &token.Encrypted{Token: "b", Scopes: []string{}}))

		got, err := b.Load(ctx, nil, "alice")
		require.NoError(t, err)
		require.Equal(t, "a", got.Token)

		require.NoError(t, b.Delete(ctx, nil, nil, "alice"))
		_, err = b.Load(ctx, nil, "alice")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)

		got, err = b.Load(ctx, nil, "bob")
		require.NoError(t, err)
		require.Equal(t, "b", got.Token)
	})

	t.Run("driver errors are wrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		b := tokenstore.NewDatastore(failingStore{err: cause})

		_, err := b.Load(ctx, nil, "u")
		require.ErrorIs(t, err, tokenstore.ErrLoadFailed)
		require.ErrorIs(t, err, cause)

		err = b.Save(ctx, nil, nil, "u", &token.Encrypted{Token: "ct", Scopes: []string{}})
		require.ErrorIs(t, err, tokenstore.ErrSaveFailed)
	})

	t.Run("not found passes through", func(t *testing.T) {
		t.Parallel()

		b := tokenstore.NewDatastore(failingStore{err: tokenstore.ErrNotFound})
		_, err := b.Load(ctx, nil, "u")
		require.ErrorIs(t, err, tokenstore.ErrNotFound)
		require.NotErrorIs(t, err, tokenstore.ErrLoadFailed)
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	m, err := tokenstore.ParseMethod(" Cookie ")
	require.NoError(t, err)
	require.Equal(t, tokenstore.MethodCookie, m)

	_, err = tokenstore.ParseMethod("carrier-pigeon")
	require.ErrorIs(t, err, tokenstore.ErrUnsupportedStorageMethod)

	d, err := tokenstore.ParseDriver("postgres")
	require.NoError(t, err)
	require.Equal(t, tokenstore.DriverPostgres, d)

	_, err = tokenstore.ParseDriver("mongo")
	require.ErrorIs(t, err, tokenstore.ErrUnsupportedDriver)

	require.Equal(t, "oauth2token:u", tokenstore.NewKey("u").String())
}
