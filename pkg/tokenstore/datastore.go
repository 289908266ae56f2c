package tokenstore

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// Store is a keyed record store. Drivers: MemoryStore, RedisStore, PostgresStore, S3Store.
type Store interface {
	// Get returns the record at key or ErrNotFound.
	Get(ctx context.Context, key Key) (*token.Encrypted, error)

	// Put creates or replaces the record at key.
	Put(ctx context.Context, key Key, rec *token.Encrypted) error

	// Delete removes the record at key. Missing keys are not an error.
	Delete(ctx context.Context, key Key) error
}

// Driver names a Store implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverRedis    Driver = "redis"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// ParseDriver converts a configuration value into a Driver.
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(strings.TrimSpace(s))); d {
	case DriverMemory, DriverRedis, DriverPostgres, DriverS3:
		return d, nil
	default:
		return "", ErrUnsupportedDriver
	}
}

// Datastore persists records in a Store under Key{Namespace, userID}.
type Datastore struct {
	store Store
}

// NewDatastore wraps a Store as a Backend.
func NewDatastore(store Store) *Datastore {
	return &Datastore{store: store}
}

// Method returns MethodDatastore.
func (d *Datastore) Method() Method { return MethodDatastore }

// RequiresUserID returns true.
func (d *Datastore) RequiresUserID() bool { return true }

// Load reads the user's record.
func (d *Datastore) Load(ctx context.Context, _ *http.Request, userID string) (*token.Encrypted, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	rec, err := d.store.Get(ctx, NewKey(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedRecord) {
			return nil, err
		}
		return nil, errors.Join(ErrLoadFailed, err)
	}
	return rec, nil
}

// Save writes the user's record.
func (d *Datastore) Save(ctx context.Context, _ http.ResponseWriter, _ *http.Request, userID string, rec *token.Encrypted) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	if err := d.store.Put(ctx, NewKey(userID), rec); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Delete removes the user's record.
func (d *Datastore) Delete(ctx context.Context, _ http.ResponseWriter, _ *http.Request, userID string) error {
	if userID == "" {
		return ErrUserIDRequired
	}
	return d.store.Delete(ctx, NewKey(userID))
}

var _ Backend = (*Datastore)(nil)
