package tokenvault

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/tokenvault/pkg/cipher"
	"github.com/dmitrymomot/tokenvault/pkg/db"
	"github.com/dmitrymomot/tokenvault/pkg/logger"
	"github.com/dmitrymomot/tokenvault/pkg/oauth"
	"github.com/dmitrymomot/tokenvault/pkg/redis"
	"github.com/dmitrymomot/tokenvault/pkg/tokenstore"
)

// Config is the environment-driven configuration consumed by Open.
// Nested sections read their own variables; see each package's Config.
type Config struct {
	StorageMethod string        `env:"TOKEN_STORAGE_METHOD" envDefault:"cookie"`
	Driver        string        `env:"TOKEN_DATASTORE_DRIVER" envDefault:"memory"`
	DefaultScopes []string      `env:"DEFAULT_SCOPES" envSeparator:","`
	UserIDFormat  string        `env:"USER_ID_FORMAT" envDefault:"email"`
	Mode          string        `env:"EXECUTION_MODE" envDefault:"http"`
	RefreshMargin time.Duration `env:"TOKEN_REFRESH_MARGIN" envDefault:"60s"`

	CookieName   string `env:"TOKEN_COOKIE_NAME" envDefault:"oauth2token"`
	CookieMaxAge int    `env:"TOKEN_COOKIE_MAX_AGE" envDefault:"0"`
	CookieSecure string `env:"TOKEN_COOKIE_SECURE" envDefault:"auto"`

	Cipher   cipher.Config
	OAuth    oauth.Config
	Redis    redis.Config
	Database db.Config
	S3       tokenstore.S3Config
	Log      logger.Config
}

// LoadConfig reads Config from the environment. Google credentials missing
// from the environment are taken from the client secret file when it exists.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := cfg.applyClientSecret(); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyClientSecret() error {
	if !strings.EqualFold(c.OAuth.Provider, oauth.GoogleProviderName) && c.OAuth.Provider != "" {
		return nil
	}
	cs, err := oauth.LoadClientSecret(c.OAuth.ClientSecretFile)
	if err != nil {
		return err
	}
	if cs != nil {
		c.OAuth.Google = cs.Apply(c.OAuth.Google)
	}
	return nil
}

// Validate checks enumerated values and the settings each selected component needs.
// All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	method, err := tokenstore.ParseMethod(c.StorageMethod)
	if err != nil {
		errs = append(errs, err)
	}
	if method == tokenstore.MethodDatastore {
		driver, err := tokenstore.ParseDriver(c.Driver)
		if err != nil {
			errs = append(errs, err)
		}
		switch driver {
		case tokenstore.DriverRedis:
			if c.Redis.URL == "" {
				invalid("TOKEN_REDIS_URL is required for the redis driver")
			}
		case tokenstore.DriverPostgres:
			if c.Database.ConnectionString == "" {
				invalid("TOKEN_DATABASE_URL is required for the postgres driver")
			}
		case tokenstore.DriverS3:
			if c.S3.Bucket == "" {
				invalid("TOKEN_S3_BUCKET is required for the s3 driver")
			}
		}
	}

	if _, err := ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseUserIDFormat(c.UserIDFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseSecureMode(c.CookieSecure); err != nil {
		errs = append(errs, err)
	}

	kind, err := cipher.ParseKind(c.Cipher.Kind)
	if err != nil {
		errs = append(errs, err)
	}
	switch kind {
	case cipher.KindKMS:
		if c.Cipher.KMS.KeyID == "" {
			invalid("KMS_KEY_ID is required for the kms cipher")
		}
	case cipher.KindLocal:
		if c.Cipher.Secret == "" {
			invalid("TOKEN_ENCRYPTION_KEY is required for the local cipher")
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.OAuth.Provider)) {
	case "", oauth.GoogleProviderName:
		requireAll(invalid, "GOOGLE", c.OAuth.Google.ClientID, c.OAuth.Google.ClientSecret, c.OAuth.Google.RedirectURL)
	case oauth.GitHubProviderName:
		requireAll(invalid, "GITHUB", c.OAuth.GitHub.ClientID, c.OAuth.GitHub.ClientSecret, c.OAuth.GitHub.RedirectURL)
	default:
		errs = append(errs, oauth.ErrUnsupportedProvider)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

func requireAll(invalid func(string, ...any), prefix, clientID, clientSecret, callbackURL string) {
	if clientID == "" {
		invalid("%s_CLIENT_ID is required", prefix)
	}
	if clientSecret == "" {
		invalid("%s_CLIENT_SECRET is required", prefix)
	}
	if callbackURL == "" {
		invalid("%s_CALLBACK_URL is required", prefix)
	}
}
