// Package oauth wraps golang.org/x/oauth2 behind the Provider interface the
// token engine uses: consent URL, code exchange, forced refresh and userinfo.
//
// Google and GitHub are implemented. Both share the same oauth2.Config based
// plumbing; they differ only in endpoints and in how the profile is read.
//
// # Usage
//
//	provider, err := oauth.New(oauth.Config{
//		Provider: "google",
//		Google: oauth.GoogleConfig{
//			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
//			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
//			RedirectURL:  "https://example.com/oauth2callback",
//		},
//	})
//	if err != nil {
//		return err
//	}
//
//	url := provider.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
//	tok, err := provider.Exchange(ctx, code, "")
//	fresh, err := provider.Refresh(ctx, tok)
//	user, err := provider.FetchUserInfo(ctx, fresh)
//
// # GitHub token lifetime
//
// Only GitHub Apps with expiring user-to-server tokens are supported. Classic
// OAuth apps issue tokens with no expiry and no refresh token; the engine treats
// a token without expiry as stale and its refresh fails with
// ErrMissingRefreshToken, so every authentication is rejected. tokenvault.Open
// logs a warning when the github provider is selected.
//
// # Client secret file
//
// Google Cloud Console hands out a client_secret.json file. LoadClientSecret
// reads it and Apply fills client id, secret and the first redirect URI into
// a GoogleConfig without overriding values that came from the environment.
//
// # Errors
//
// All errors are "oauth:" prefixed sentinels joined with the underlying cause,
// so callers can test them with errors.Is.
package oauth
