package tokenstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations for the oauth2_tokens table,
// rooted so that files sit at the top level. Apply with pkg/db.Migrate.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// PgxQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgSelectRecord = `SELECT token, scopes FROM oauth2_tokens WHERE namespace = $1 AND user_id = $2`
	pgUpsertRecord = `INSERT INTO oauth2_tokens (namespace, user_id, token, scopes, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (namespace, user_id) DO UPDATE
SET token = EXCLUDED.token, scopes = EXCLUDED.scopes, updated_at = now()`
	pgDeleteRecord = `DELETE FROM oauth2_tokens WHERE namespace = $1 AND user_id = $2`
)

// PostgresStore keeps records in the oauth2_tokens table.
type PostgresStore struct {
	db PgxQuerier
}

// NewPostgresStore creates a PostgreSQL-backed Store.
func NewPostgresStore(db PgxQuerier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the record at key or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key Key) (*token.Encrypted, error) {
	var (
		ciphertext string
		scopes     []byte
	)
	err := s.db.QueryRow(ctx, pgSelectRecord, key.Namespace, key.UserID).Scan(&ciphertext, &scopes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := &token.Encrypted{Token: ciphertext}
	if err := json.Unmarshal(scopes, &rec.Scopes); err != nil {
		return nil, errors.Join(ErrMalformedRecord, err)
	}
	return rec, nil
}

// Put upserts rec.
func (s *PostgresStore) Put(ctx context.Context, key Key, rec *token.Encrypted) error {
	if rec == nil {
		return ErrMalformedRecord
	}
	scopes, err := json.Marshal(rec.Scopes)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, pgUpsertRecord, key.Namespace, key.UserID, rec.Token, scopes)
	return err
}

// Delete removes the record at key.
func (s *PostgresStore) Delete(ctx context.Context, key Key) error {
	_, err := s.db.Exec(ctx, pgDeleteRecord, key.Namespace, key.UserID)
	return err
}

var _ Store = (*PostgresStore)(nil)
