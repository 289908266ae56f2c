// Package logger builds log/slog loggers with context extractors and optional
// Sentry fan-out.
//
// A ContextExtractor pulls one attribute out of the context on every log call.
// The token engine exposes one that adds the storage method and, once resolved,
// the user id of the current request:
//
//	log := logger.New(cfg, engine.LogExtractor())
//	log.InfoContext(r.Context(), "signed in")
//	// {"level":"INFO","msg":"signed in","storage_method":"datastore","user_id":"..."}
//
// Settings are read from the environment:
//
//	LOG_LEVEL          - debug, info, warn or error (default: info)
//	LOG_FORMAT         - json or text (default: json)
//	SENTRY_DSN         - enables Sentry when set
//	SENTRY_ENVIRONMENT - Sentry environment (default: production)
//	SENTRY_MIN_LEVEL   - warn or error (default: warn)
//
// Errors always create Sentry issues; warnings are kept as Sentry logs unless
// SENTRY_MIN_LEVEL is error. Call Flush before exit so buffered events are sent.
package logger
