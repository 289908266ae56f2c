package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/logger"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/token"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

// Engine authenticates requests from stored, encrypted OAuth2 tokens.
// It is safe for concurrent use; all per-request state lives in the context.
type Engine struct {
	provider      oauth.Provider
	cipher        cipher.Cipher
	backend       tokenstore.Backend
	logger        *slog.Logger
	now           func() time.Time
	invocation    *requestState
	mode          Mode
	userIDFormat  UserIDFormat
	defaultScopes []string
	refreshMargin time.Duration
	invocationMu  sync.Mutex
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(provider oauth.Provider, c cipher.Cipher, backend tokenstore.Backend, opts ...Option) *Engine {
	e := &Engine{
		provider:      provider,
		cipher:        c,
		backend:       backend,
		logger:        logger.NewNope(),
		now:           time.Now,
		mode:          ModeHTTP,
		userIDFormat:  UserIDEmail,
		refreshMargin: DefaultRefreshMargin,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = slog.New(logger.NewLogHandlerDecorator(e.logger.Handler(), e.LogExtractor()))
	return e
}

// Mode returns the execution mode.
func (e *Engine) Mode() Mode { return e.mode }

// StorageMethod returns the storage method of the configured backend, or "" when none is set.
func (e *Engine) StorageMethod() tokenstore.Method {
	if e.backend == nil {
		return ""
	}
	return e.backend.Method()
}

// Provider returns the OAuth provider.
func (e *Engine) Provider() oauth.Provider { return e.provider }

// TryAuthenticate reports whether the request is, or can become, authenticated.
// It never fails; use RequireAuthenticated to learn why authentication did not succeed.
func (e *Engine) TryAuthenticate(ctx context.Context, userID string) bool {
	if err := e.RequireAuthenticated(ctx, userID); err != nil {
		e.logger.DebugContext(ctx, "authentication attempt failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// RequireAuthenticated authenticates the request unless it already is.
// It loads the stored record, decrypts it, refreshes a stale token and installs
// the session in the request cache.
func (e *Engine) RequireAuthenticated(ctx context.Context, userID string) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return e.authenticate(ctx, st, userID)
}

// IsAuthenticated reports whether a session is already cached for this request.
// It performs no I/O.
func (e *Engine) IsAuthenticated(ctx context.Context) bool {
	st, err := e.state(ctx)
	if err != nil {
		return false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.scoped != nil
}

// RequireExistingSession fails with ErrNotAuthenticated unless IsAuthenticated.
// It never authenticates as a side effect.
func (e *Engine) RequireExistingSession(ctx context.Context) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return requireSession(st)
}

// AuthenticatedClient authenticates if needed and returns the live client handle.
func (e *Engine) AuthenticatedClient(ctx context.Context, userID string) (*Client, error) {
	var c *Client
	err := e.withSession(ctx, userID, func(st *requestState) {
		c = st.client
	})
	return c, err
}

// AuthenticatedToken authenticates if needed and returns a copy of the credential.
func (e *Engine) AuthenticatedToken(ctx context.Context, userID string) (*token.Credential, error) {
	var cred *token.Credential
	err := e.withSession(ctx, userID, func(st *requestState) {
		cred = st.scoped.Token.Clone()
	})
	return cred, err
}

// AuthenticatedScopedToken authenticates if needed and returns a copy of the scoped token.
func (e *Engine) AuthenticatedScopedToken(ctx context.Context, userID string) (*token.Scoped, error) {
	var scoped *token.Scoped
	err := e.withSession(ctx, userID, func(st *requestState) {
		scoped = &token.Scoped{Token: st.scoped.Token.Clone(), Scopes: slices.Clone(st.scoped.Scopes)}
	})
	return scoped, err
}

// HasScope reports whether the existing session was granted scope.
func (e *Engine) HasScope(ctx context.Context, scope string) (bool, error) {
	st, err := e.state(ctx)
	if err != nil {
		return false, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := requireSession(st); err != nil {
		return false, err
	}
	return st.scoped.HasScope(scope), nil
}

// StoreScopedToken validates, encrypts and persists scoped for userID.
// It does not touch the request cache. Validation order: present, shape,
// user id when the backend needs one, then storage method.
func (e *Engine) StoreScopedToken(ctx context.Context, scoped *token.Scoped, userID string) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}
	return e.store(ctx, st, scoped, userID)
}

// SetLiveSession installs scoped as the request's session without validating
// or persisting it. Used right after a code exchange, before the user id is known.
func (e *Engine) SetLiveSession(ctx context.Context, scoped *token.Scoped) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if scoped == nil {
		st.reset()
		return nil
	}
	st.install(scoped)
	return nil
}

// SignOut clears the request session and deletes the stored record.
func (e *Engine) SignOut(ctx context.Context, userID string) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}
	if err := e.checkBackend(userID); err != nil {
		return err
	}

	st.mu.Lock()
	st.reset()
	st.mu.Unlock()

	if err := e.backend.Delete(ctx, st.w, st.r, userID); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "token record deleted")
	return nil
}

// withSession authenticates and runs fn under the request lock.
func (e *Engine) withSession(ctx context.Context, userID string, fn func(*requestState)) error {
	st, err := e.state(ctx)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := e.authenticate(ctx, st, userID); err != nil {
		return err
	}
	fn(st)
	return nil
}

// authenticate must be called with st.mu held.
func (e *Engine) authenticate(ctx context.Context, st *requestState, userID string) error {
	if st.scoped != nil {
		return nil
	}

	// A keyed store cannot be queried without a key, so the user id check
	// precedes the lookup here.
	if e.backend == nil {
		return ErrUnsupportedStorageMethod
	}
	if e.backend.RequiresUserID() && userID == "" {
		return ErrUserIDRequired
	}

	rec, err := e.backend.Load(ctx, st.r, userID)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound):
		return ErrUnknownUser
	case errors.Is(err, tokenstore.ErrMalformedRecord):
		return errors.Join(ErrScopedTokenRequired, err)
	case err != nil:
		return err
	}
	if !rec.Valid() {
		return ErrScopedTokenRequired
	}

	plaintext, err := e.cipher.Decrypt(ctx, rec.Token)
	if err != nil {
		return errors.Join(ErrDecryptionFailed, err)
	}

	var cred token.Credential
	if err := json.Unmarshal([]byte(plaintext), &cred); err != nil {
		return errors.Join(ErrScopedTokenRequired, err)
	}
	scoped := &token.Scoped{Token: &cred, Scopes: rec.Scopes}

	if cred.Stale(e.now(), e.refreshMargin) {
		scoped, err = e.refresh(ctx, st, scoped, userID)
		if err != nil {
			return err
		}
	}

	st.install(scoped)
	return nil
}

// refresh exchanges the refresh token once and re-persists the result with the same scopes.
func (e *Engine) refresh(ctx context.Context, st *requestState, scoped *token.Scoped, userID string) (*token.Scoped, error) {
	e.logger.DebugContext(ctx, "refreshing stale token", slog.Time("expiry", scoped.Token.Expiry()))

	fresh, err := e.provider.Refresh(ctx, scoped.Token.OAuth2())
	if err != nil {
		e.logger.WarnContext(ctx, "token refresh failed", slog.String("error", err.Error()))
		return nil, errors.Join(ErrRefreshFailed, err)
	}

	cred := token.FromOAuth2(fresh)
	if cred.RefreshToken == "" {
		cred.RefreshToken = scoped.Token.RefreshToken
	}
	refreshed := &token.Scoped{Token: cred, Scopes: scoped.Scopes}

	if err := e.store(ctx, st, refreshed, userID); err != nil {
		return nil, err
	}
	return refreshed, nil
}

func (e *Engine) store(ctx context.Context, st *requestState, scoped *token.Scoped, userID string) error {
	if scoped == nil {
		return ErrUnknownUser
	}
	if !scoped.Valid() {
		return ErrScopedTokenRequired
	}
	if err := e.checkBackend(userID); err != nil {
		return err
	}

	plaintext, err := json.Marshal(scoped.Token)
	if err != nil {
		return errors.Join(ErrScopedTokenRequired, err)
	}
	ciphertext, err := e.cipher.Encrypt(ctx, string(plaintext))
	if err != nil {
		return err
	}

	rec := &token.Encrypted{Token: ciphertext, Scopes: slices.Clone(scoped.Scopes)}
	if err := e.backend.Save(ctx, st.w, st.r, userID, rec); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "token record stored", slog.Int("scopes", len(rec.Scopes)))
	return nil
}

// checkBackend covers the user id requirement and storage method steps of validation.
func (e *Engine) checkBackend(userID string) error {
	if e.backend != nil && e.backend.RequiresUserID() && userID == "" {
		return ErrUserIDRequired
	}
	if e.backend == nil {
		return ErrUnsupportedStorageMethod
	}
	if _, err := tokenstore.ParseMethod(string(e.backend.Method())); err != nil {
		return err
	}
	return nil
}

func requireSession(st *requestState) error {
	if st.scoped == nil {
		return ErrNotAuthenticated
	}
	return nil
}
