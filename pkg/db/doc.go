// Package db connects the postgres token driver to PostgreSQL.
//
// It wraps [github.com/jackc/pgx/v5/pgxpool] with startup retries, a ping
// based health probe and goose migrations ([github.com/pressly/goose/v3]).
//
// Settings are read from the environment:
//
//	TOKEN_DATABASE_URL                 - PostgreSQL connection URL
//	TOKEN_DATABASE_MIGRATIONS_TABLE    - goose version table (default: tokenvault_migrations)
//	TOKEN_DATABASE_AUTO_MIGRATE        - apply migrations on startup (default: true)
//	TOKEN_DATABASE_MAX_OPEN_CONNS      - pool size (default: 5)
//	TOKEN_DATABASE_MIN_CONNS           - idle connections (default: 1)
//	TOKEN_DATABASE_RETRY_ATTEMPTS      - connection attempts (default: 3)
//	TOKEN_DATABASE_RETRY_INTERVAL      - base retry interval (default: 2s)
//
// Usage:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.Migrate(ctx, pool, tokenstore.Migrations(), cfg.MigrationsTable, log); err != nil {
//		return err
//	}
//	store := tokenstore.NewPostgresStore(pool)
//
// Errors are sentinel values joined with the cause via [errors.Join].
package db
