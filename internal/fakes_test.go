package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/token"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	config      *oauth2.Config
	refreshed   *oauth2.Token
	refreshErr  error
	exchanged   *oauth2.Token
	exchangeErr error
	info        *oauth.UserInfo
	infoErr     error

	refreshCalls  atomic.Int32
	exchangeCalls atomic.Int32
	infoCalls     atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		config: &oauth2.Config{
			ClientID: "client-id",
			Scopes:   []string{"email"},
			Endpoint: oauth2.Endpoint{AuthURL: "https://provider.test/auth", TokenURL: "https://provider.test/token"},
		},
		info: &oauth.UserInfo{ID: "42", Email: "user@example.com"},
	}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Scopes() []string { return p.config.Scopes }

func (p *fakeProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

func (p *fakeProvider) Exchange(_ context.Context, _, _ string) (*oauth2.Token, error) {
	p.exchangeCalls.Add(1)
	return p.exchanged, p.exchangeErr
}

func (p *fakeProvider) Refresh(_ context.Context, _ *oauth2.Token) (*oauth2.Token, error) {
	p.refreshCalls.Add(1)
	return p.refreshed, p.refreshErr
}

func (p *fakeProvider) FetchUserInfo(_ context.Context, _ *oauth2.Token) (*oauth.UserInfo, error) {
	p.infoCalls.Add(1)
	return p.info, p.infoErr
}

// fakeCipher prefixes plaintext so records stay readable in assertions.
type fakeCipher struct {
	encrypts atomic.Int32
	decrypts atomic.Int32
}

func (c *fakeCipher) Encrypt(_ context.Context, plaintext string) (string, error) {
	c.encrypts.Add(1)
	return "enc:" + plaintext, nil
}

func (c *fakeCipher) Decrypt(_ context.Context, ciphertext string) (string, error) {
	c.decrypts.Add(1)
	plaintext, ok := strings.CutPrefix(ciphertext, "enc:")
	if !ok {
		return "", errors.Join(cipher.ErrDecryptionFailed, errors.New("bad prefix"))
	}
	return plaintext, nil
}

type countingBackend struct {
	tokenstore.Backend
	loads   atomic.Int32
	saves   atomic.Int32
	deletes atomic.Int32
}

func (b *countingBackend) Load(ctx context.Context, r *http.Request, userID string) (*token.Encrypted, error) {
	b.loads.Add(1)
	return b.Backend.Load(ctx, r, userID)
}

func (b *countingBackend) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, rec *token.Encrypted) error {
	b.saves.Add(1)
	return b.Backend.Save(ctx, w, r, userID, rec)
}

func (b *countingBackend) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) error {
	b.deletes.Add(1)
	return b.Backend.Delete(ctx, w, r, userID)
}

func (b *countingBackend) ioCalls() int32 {
	return b.loads.Load() + b.saves.Load() + b.deletes.Load()
}

type fixture struct {
	engine   *Engine
	provider *fakeProvider
	cipher   *fakeCipher
	backend  *countingBackend
	store    *tokenstore.MemoryStore
}

func newDatastoreFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store := tokenstore.NewMemoryStore()
	f := &fixture{
		provider: newFakeProvider(),
		cipher:   &fakeCipher{},
		backend:  &countingBackend{Backend: tokenstore.NewDatastore(store)},
		store:    store,
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	f.engine = NewEngine(f.provider, f.cipher, f.backend, opts...)
	return f
}

func newCookieFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		provider: newFakeProvider(),
		cipher:   &fakeCipher{},
		backend:  &countingBackend{Backend: tokenstore.NewCookie()},
	}
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	f.engine = NewEngine(f.provider, f.cipher, f.backend, opts...)
	return f
}

// seed writes a record straight into the store, bypassing the counters.
func (f *fixture) seed(t *testing.T, userID string, cred *token.Credential, scopes []string) {
	t.Helper()

	plaintext, err := json.Marshal(cred)
	require.NoError(t, err)
	rec := &token.Encrypted{Token: "enc:" + string(plaintext), Scopes: scopes}
	require.NoError(t, f.store.Put(context.Background(), tokenstore.NewKey(userID), rec))
}

// stored decodes the record persisted for userID.
func (f *fixture) stored(t *testing.T, userID string) *token.Scoped {
	t.Helper()

	rec, err := f.store.Get(context.Background(), tokenstore.NewKey(userID))
	require.NoError(t, err)

	plaintext, ok := strings.CutPrefix(rec.Token, "enc:")
	require.True(t, ok)

	var cred token.Credential
	require.NoError(t, json.Unmarshal([]byte(plaintext), &cred))
	return &token.Scoped{Token: &cred, Scopes: rec.Scopes}
}

func requestContext() (context.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return WithRequest(r.Context(), w, r), w
}

func freshCredential() *token.Credential {
	return &token.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiryDate:   testNow.Add(time.Hour).UnixMilli(),
	}
}
