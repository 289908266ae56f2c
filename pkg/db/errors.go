package db

import "errors"

var (
	// ErrEmptyConnectionString is returned when TOKEN_DATABASE_URL is not set.
	ErrEmptyConnectionString = errors.New("db: empty connection string")

	// ErrFailedToParseDBConfig is returned when the connection string cannot be parsed.
	ErrFailedToParseDBConfig = errors.New("db: failed to parse database configuration")

	// ErrFailedToOpenDBConnection is returned when no ping succeeded within the retry budget.
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")

	// ErrHealthcheckFailed is returned by Healthcheck probes.
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")

	// ErrSetDialect and ErrApplyMigrations are returned by Migrate.
	ErrSetDialect      = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations = errors.New("db migrator: failed to apply migrations")
)
