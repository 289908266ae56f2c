package tokenvault

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/tokenvault/internal"
	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/logger"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/token"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

// Type aliases - public API
type (
	// Engine authenticates requests from stored, encrypted OAuth2 tokens.
	Engine = internal.Engine

	// Client is the live OAuth client handle of an authenticated session.
	Client = internal.Client

	// Handlers drives the consent redirect and the code exchange callback.
	Handlers = internal.Handlers

	// HandlersOption configures Handlers.
	HandlersOption = internal.HandlersOption

	// Option configures the Engine.
	Option = internal.Option

	// Mode is the execution model the engine runs under.
	Mode = internal.Mode

	// UserIDFormat selects which userinfo field identifies a user.
	UserIDFormat = internal.UserIDFormat

	// Credential is an OAuth2 token set as issued by the provider.
	Credential = token.Credential

	// ScopedToken pairs a credential with the scopes it was granted under.
	ScopedToken = token.Scoped

	// EncryptedToken is the at-rest form of ScopedToken.
	EncryptedToken = token.Encrypted

	// Provider abstracts the OAuth2 operations the engine depends on.
	Provider = oauth.Provider

	// UserInfo is the provider-agnostic profile of a token's owner.
	UserInfo = oauth.UserInfo

	// Cipher encrypts serialized credentials.
	Cipher = cipher.Cipher

	// Backend persists encrypted token records.
	Backend = tokenstore.Backend

	// Store is a keyed record store used by the datastore backend.
	Store = tokenstore.Store

	// StorageMethod is the persistence strategy for encrypted tokens.
	StorageMethod = tokenstore.Method

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Execution modes.
const (
	ModeHTTP             = internal.ModeHTTP
	ModeSingleInvocation = internal.ModeSingleInvocation
)

// User id formats.
const (
	UserIDEmail    = internal.UserIDEmail
	UserIDProvider = internal.UserIDProvider
)

// Storage methods.
const (
	StorageCookie    = tokenstore.MethodCookie
	StorageDatastore = tokenstore.MethodDatastore
)

// Route paths mounted by Handlers.Routes.
const (
	DefaultInitPath     = internal.DefaultInitPath
	DefaultCallbackPath = internal.DefaultCallbackPath
)

// New creates an Engine over explicit collaborators.
// Use Open to build one from Config.
func New(provider Provider, c Cipher, backend Backend, opts ...Option) *Engine {
	return internal.NewEngine(provider, c, backend, opts...)
}

// WithRequest returns a context carrying a fresh session scope for the
// request/response pair. Engine.Middleware does this for every request.
func WithRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return internal.WithRequest(ctx, w, r)
}

// HasRequest reports whether ctx carries a session scope.
func HasRequest(ctx context.Context) bool {
	return internal.HasRequest(ctx)
}

// HasIdentityScope reports whether scopes allow resolving a user id.
func HasIdentityScope(scopes []string) bool {
	return internal.HasIdentityScope(scopes)
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	return internal.ParseMode(s)
}

// ParseUserIDFormat converts a configuration value into a UserIDFormat.
func ParseUserIDFormat(s string) (UserIDFormat, error) {
	return internal.ParseUserIDFormat(s)
}
