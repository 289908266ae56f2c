package tokenvault

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/cookie"
	"github.com/dmitrymomot/tokenvault/pkg/db"
	"github.com/dmitrymomot/tokenvault/pkg/health"
	"github.com/dmitrymomot/tokenvault/pkg/logger"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/redis"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

const sentryFlushTimeout = 2 * time.Second

// Dependencies owns what Open connected.
type Dependencies struct {
	// Logger is the logger built from Config.Log and given to the engine.
	Logger *slog.Logger

	// Checks probes the datastore connections. Empty for cookie storage
	// and for the memory and s3 drivers.
	Checks health.Checks

	shutdown []func(context.Context) error
}

// Shutdown closes connections in reverse order of opening and flushes Sentry.
func (d *Dependencies) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(d.shutdown) - 1; i >= 0; i-- {
		if err := d.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Flush(sentryFlushTimeout)
	return errors.Join(errs...)
}

// Open validates cfg and builds an Engine with its provider, cipher and
// storage backend. For the datastore method it connects the selected driver
// and, for postgres, applies migrations when enabled. opts are applied after
// the options derived from cfg.
//
// On error everything opened so far is closed again.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Engine, *Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	deps := &Dependencies{
		Logger: logger.New(cfg.Log),
		Checks: health.Checks{},
	}

	engine, err := open(ctx, cfg, deps, opts)
	if err != nil {
		_ = deps.Shutdown(ctx)
		return nil, nil, errors.Join(ErrOpenFailed, err)
	}
	return engine, deps, nil
}

func open(ctx context.Context, cfg Config, deps *Dependencies, opts []Option) (*Engine, error) {
	provider, err := oauth.New(cfg.OAuth)
	if err != nil {
		return nil, err
	}

	logProviderCaveats(ctx, deps.Logger, provider)

	c, err := cipher.New(ctx, cfg.Cipher)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	// Validate has already checked these values.
	mode, _ := ParseMode(cfg.Mode)
	format, _ := ParseUserIDFormat(cfg.UserIDFormat)

	engineOpts := []Option{
		WithLogger(deps.Logger),
		WithMode(mode),
		WithUserIDFormat(format),
		WithDefaultScopes(cfg.DefaultScopes...),
		WithRefreshMargin(cfg.RefreshMargin),
	}
	engine := New(provider, c, backend, append(engineOpts, opts...)...)

	deps.Logger.InfoContext(ctx, "token engine ready",
		slog.String("provider", provider.Name()),
		slog.String("storage_method", string(engine.StorageMethod())),
		slog.String("mode", string(engine.Mode())),
	)
	return engine, nil
}

// logProviderCaveats warns about providers whose tokens cannot go through the
// refresh-on-stale cycle. A credential without expiry_date is always stale, so
// classic GitHub OAuth app tokens fail every authentication with ErrRefreshFailed.
func logProviderCaveats(ctx context.Context, log *slog.Logger, provider oauth.Provider) {
	if provider.Name() != oauth.GitHubProviderName {
		return
	}
	log.WarnContext(ctx, "github tokens are only usable with expiring user tokens",
		slog.String("provider", provider.Name()),
		slog.String("hint", "use a GitHub App with expiring user-to-server tokens; classic OAuth app tokens never expire and have no refresh token"),
	)
}

func openBackend(ctx context.Context, cfg Config, deps *Dependencies) (Backend, error) {
	method, err := tokenstore.ParseMethod(cfg.StorageMethod)
	if err != nil {
		return nil, err
	}

	if method == tokenstore.MethodCookie {
		secure, _ := parseSecureMode(cfg.CookieSecure)
		return tokenstore.NewCookie(
			tokenstore.WithCookieName(cfg.CookieName),
			tokenstore.WithCookieMaxAge(cfg.CookieMaxAge),
			tokenstore.WithCookieManager(cookie.New(cookie.WithSecure(secure))),
		), nil
	}

	store, err := openStore(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	return tokenstore.NewDatastore(store), nil
}

func openStore(ctx context.Context, cfg Config, deps *Dependencies) (Store, error) {
	driver, err := tokenstore.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	switch driver {
	case tokenstore.DriverRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		deps.shutdown = append(deps.shutdown, redis.Shutdown(client))
		deps.Checks["redis"] = redis.Healthcheck(client)
		return tokenstore.NewRedisStore(client,
			tokenstore.WithRedisPrefix(cfg.Redis.Prefix),
			tokenstore.WithRedisTTL(cfg.Redis.TTL),
		), nil

	case tokenstore.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		deps.shutdown = append(deps.shutdown, db.Shutdown(pool))
		deps.Checks["postgres"] = db.Healthcheck(pool)
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, pool, tokenstore.Migrations(), cfg.Database.MigrationsTable, deps.Logger); err != nil {
				return nil, err
			}
		}
		return tokenstore.NewPostgresStore(pool), nil

	case tokenstore.DriverS3:
		client, err := tokenstore.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return tokenstore.NewS3Store(client, cfg.S3.Bucket, cfg.S3.Prefix), nil

	default:
		return tokenstore.NewMemoryStore(), nil
	}
}

func parseSecureMode(s string) (cookie.SecureMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return cookie.SecureAuto, nil
	case "always", "true":
		return cookie.SecureAlways, nil
	case "never", "false":
		return cookie.SecureNever, nil
	default:
		return cookie.SecureAuto, errors.Join(ErrInvalidConfig, errors.New("TOKEN_COOKIE_SECURE must be auto, always or never"))
	}
}
