package oauth

import "strings"

// GoogleConfig holds Google OAuth configuration.
// Missing values may be filled from a client_secret.json file, see ClientSecret.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_CALLBACK_URL"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}

// GitHubConfig holds GitHub OAuth configuration.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_CLIENT_ID"`
	ClientSecret string   `env:"GITHUB_CLIENT_SECRET"`
	RedirectURL  string   `env:"GITHUB_CALLBACK_URL"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:","`
}

// Config selects and configures one provider.
type Config struct {
	Provider         string `env:"OAUTH_PROVIDER" envDefault:"google"`
	ClientSecretFile string `env:"CLIENT_SECRET_FILE" envDefault:"client_secret.json"`
	Google           GoogleConfig
	GitHub           GitHubConfig
}

// RedirectURL returns the callback URL of the selected provider.
func (c Config) RedirectURL() string {
	if strings.EqualFold(c.Provider, GitHubProviderName) {
		return c.GitHub.RedirectURL
	}
	return c.Google.RedirectURL
}

// New builds the provider named by cfg.Provider.
func New(cfg Config, opts ...Option) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", GoogleProviderName:
		return NewGoogleProvider(cfg.Google, opts...)
	case GitHubProviderName:
		return NewGitHubProvider(cfg.GitHub, opts...)
	default:
		return nil, ErrUnsupportedProvider
	}
}
