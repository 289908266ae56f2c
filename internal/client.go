package internal

import (
	"context"
	"net/http"
	"slices"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// Client is the live OAuth client handle of an authenticated session.
// It is immutable; a refresh installs a new Client.
type Client struct {
	credential *token.Credential
	scopes     []string
}

func newClient(scoped *token.Scoped) *Client {
	if scoped == nil {
		return nil
	}
	return &Client{
		credential: scoped.Token.Clone(),
		scopes:     slices.Clone(scoped.Scopes),
	}
}

// Credential returns a copy of the installed credential.
func (c *Client) Credential() *token.Credential {
	return c.credential.Clone()
}

// Scopes returns the granted scopes.
func (c *Client) Scopes() []string {
	return slices.Clone(c.scopes)
}

// Token returns the credential as an *oauth2.Token.
func (c *Client) Token() *oauth2.Token {
	return c.credential.OAuth2()
}

// TokenSource returns a source that always yields the installed token.
// Refreshing is the engine's job, not the caller's.
func (c *Client) TokenSource() oauth2.TokenSource {
	return oauth2.StaticTokenSource(c.Token())
}

// HTTPClient returns an *http.Client that sends the access token as a bearer
// header. A base client set in ctx under oauth2.HTTPClient is honoured.
func (c *Client) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource())
}
