package oauth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// UserInfo is the provider-agnostic profile returned by the userinfo endpoint.
// Email is empty when the granted scopes do not expose it.
type UserInfo struct {
	ID            string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// Provider abstracts the OAuth2 operations the token engine depends on.
type Provider interface {
	// Name returns the provider identifier ("google", "github").
	Name() string

	// AuthCodeURL builds the consent URL.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for a token set.
	// An empty redirectURI uses the configured one.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// Refresh obtains a new access token with the refresh token of t.
	// The returned token keeps t's refresh token when the provider omits one.
	Refresh(ctx context.Context, t *oauth2.Token) (*oauth2.Token, error)

	// FetchUserInfo loads the profile of the token's owner.
	FetchUserInfo(ctx context.Context, t *oauth2.Token) (*UserInfo, error)
}

// base implements the provider-independent half of Provider over an oauth2.Config.
type base struct {
	config     *oauth2.Config
	httpClient *http.Client
}

func newBase(clientID, clientSecret, redirectURL string, scopes []string, endpoint oauth2.Endpoint, o options) base {
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}
	return base{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: o.httpClient,
	}
}

// AuthCodeURL generates the authorization URL.
func (b base) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return b.config.AuthCodeURL(state, opts...)
}

// Scopes returns the default scopes requested on consent.
func (b base) Scopes() []string {
	return append([]string(nil), b.config.Scopes...)
}

// Exchange trades an authorization code for tokens.
func (b base) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := b.config
	if redirectURI != "" {
		cp := *b.config
		cp.RedirectURL = redirectURI
		cfg = &cp
	}

	t, err := cfg.Exchange(b.withHTTPClient(ctx), code)
	if err != nil {
		return nil, errors.Join(ErrExchangeFailed, err)
	}
	return t, nil
}

// Refresh forces a refresh-token grant regardless of t's expiry.
func (b base) Refresh(ctx context.Context, t *oauth2.Token) (*oauth2.Token, error) {
	if t == nil || t.RefreshToken == "" {
		return nil, ErrMissingRefreshToken
	}

	// No access token makes the token invalid, so the source always hits the token endpoint.
	src := b.config.TokenSource(b.withHTTPClient(ctx), &oauth2.Token{RefreshToken: t.RefreshToken})
	fresh, err := src.Token()
	if err != nil {
		return nil, errors.Join(ErrRefreshFailed, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = t.RefreshToken
	}
	return fresh, nil
}

func (b base) client(ctx context.Context, t *oauth2.Token) *http.Client {
	return b.config.Client(b.withHTTPClient(ctx), t)
}

func (b base) withHTTPClient(ctx context.Context) context.Context {
	if b.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	}
	return ctx
}
