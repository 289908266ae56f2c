package tokenstore

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// Namespace is the key namespace for persisted token records.
const Namespace = "oauth2token"

// Method is the persistence strategy for encrypted tokens.
type Method string

const (
	// MethodCookie keeps the record in a client-side cookie.
	MethodCookie Method = "cookie"
	// MethodDatastore keeps the record in a keyed server-side store.
	MethodDatastore Method = "datastore"
)

// ParseMethod converts a configuration value into a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCookie, MethodDatastore:
		return m, nil
	default:
		return "", ErrUnsupportedStorageMethod
	}
}

// Key addresses a record in a keyed store.
type Key struct {
	Namespace string
	UserID    string
}

// NewKey returns the token key for a user.
func NewKey(userID string) Key {
	return Key{Namespace: Namespace, UserID: userID}
}

// String renders the key as "namespace:userID".
func (k Key) String() string {
	return k.Namespace + ":" + k.UserID
}

// Backend persists encrypted token records.
// It never decrypts or inspects the ciphertext.
type Backend interface {
	// Method reports the storage strategy.
	Method() Method

	// RequiresUserID reports whether Load/Save/Delete need a non-empty user id.
	RequiresUserID() bool

	// Load returns the stored record or ErrNotFound.
	// r may be nil outside HTTP contexts.
	Load(ctx context.Context, r *http.Request, userID string) (*token.Encrypted, error)

	// Save persists rec. w and r may be nil outside HTTP contexts.
	Save(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, rec *token.Encrypted) error

	// Delete removes the stored record. Missing records are not an error.
	Delete(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string) error
}
