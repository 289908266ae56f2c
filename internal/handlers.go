package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/tokenvault/pkg/cookie"
	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// Default route glue settings.
const (
	DefaultInitPath     = "/oauth2init"
	DefaultCallbackPath = "/oauth2callback"

	defaultStateCookie = "oauth2state"
	stateCookieMaxAge  = 600
)

// Handlers drives the consent redirect and the code exchange callback.
type Handlers struct {
	engine          *Engine
	cookies         *cookie.Manager
	onSuccess       http.HandlerFunc
	onFailure       func(w http.ResponseWriter, r *http.Request, err error)
	stateCookie     string
	successRedirect string
	failureRedirect string
	redirectURL     string
}

// HandlersOption configures Handlers.
type HandlersOption func(*Handlers)

// WithSuccessRedirect redirects to url after a successful callback.
func WithSuccessRedirect(url string) HandlersOption {
	return func(h *Handlers) {
		h.successRedirect = url
	}
}

// WithFailureRedirect redirects to url after a failed callback.
func WithFailureRedirect(url string) HandlersOption {
	return func(h *Handlers) {
		h.failureRedirect = url
	}
}

// WithSuccessHandler runs fn after a successful callback. It wins over WithSuccessRedirect.
func WithSuccessHandler(fn http.HandlerFunc) HandlersOption {
	return func(h *Handlers) {
		h.onSuccess = fn
	}
}

// WithFailureHandler runs fn after a failed callback. It wins over WithFailureRedirect.
func WithFailureHandler(fn func(w http.ResponseWriter, r *http.Request, err error)) HandlersOption {
	return func(h *Handlers) {
		h.onFailure = fn
	}
}

// WithCallbackURL overrides the redirect URI sent on exchange.
func WithCallbackURL(url string) HandlersOption {
	return func(h *Handlers) {
		h.redirectURL = url
	}
}

// WithStateCookie sets the state cookie manager and name.
func WithStateCookie(m *cookie.Manager, name string) HandlersOption {
	return func(h *Handlers) {
		if m != nil {
			h.cookies = m
		}
		if name != "" {
			h.stateCookie = name
		}
	}
}

// Handlers returns the OAuth route glue bound to e.
func (e *Engine) Handlers(opts ...HandlersOption) *Handlers {
	h := &Handlers{
		engine:      e,
		cookies:     cookie.New(),
		stateCookie: defaultStateCookie,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts Init with the default scopes and Callback on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get(DefaultInitPath, h.Init())
	r.Get(DefaultCallbackPath, h.Callback())
}

type oauthState struct {
	State  string   `json:"state"`
	Scopes []string `json:"scopes"`
}

// Init redirects to the provider's consent page for scopes, or the engine's
// default scopes when none are given. Offline access and forced consent make
// the provider issue a refresh token every time.
func (h *Handlers) Init(scopes ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requested := h.engine.requestScopes(scopes)

		st := oauthState{State: uuid.NewString(), Scopes: requested}
		if err := h.cookies.SetJSON(w, r, h.stateCookie, st, stateCookieMaxAge); err != nil {
			h.fail(w, r, err)
			return
		}

		opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
		if len(requested) > 0 {
			opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(requested, " ")))
		}
		http.Redirect(w, r, h.engine.provider.AuthCodeURL(st.State, opts...), http.StatusFound)
	}
}

// Callback checks the state, exchanges the code, installs and stores the token.
// The user id is resolved first when the storage method needs one.
func (h *Handlers) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !HasRequest(ctx) {
			ctx = WithRequest(ctx, w, r)
			r = r.WithContext(ctx)
		}

		var st oauthState
		err := h.cookies.GetJSON(r, h.stateCookie, &st)
		h.cookies.Delete(w, r, h.stateCookie)
		if err != nil || st.State == "" || st.State != r.URL.Query().Get("state") {
			h.fail(w, r, errors.Join(ErrInvalidState, err))
			return
		}

		if providerErr := r.URL.Query().Get("error"); providerErr != "" {
			h.fail(w, r, errors.Join(ErrInvalidCallback, errors.New(providerErr)))
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			h.fail(w, r, errors.Join(ErrInvalidCallback, errors.New("missing code")))
			return
		}

		tok, err := h.engine.provider.Exchange(ctx, code, h.redirectURL)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		scoped := &token.Scoped{Token: token.FromOAuth2(tok), Scopes: grantedScopes(tok, st.Scopes)}
		if err := h.engine.SetLiveSession(ctx, scoped); err != nil {
			h.fail(w, r, err)
			return
		}

		var userID string
		if h.engine.backend != nil && h.engine.backend.RequiresUserID() {
			if userID, err = h.engine.UserID(ctx); err != nil {
				h.fail(w, r, err)
				return
			}
		}

		if err := h.engine.StoreScopedToken(ctx, scoped, userID); err != nil {
			h.fail(w, r, err)
			return
		}

		h.engine.logger.InfoContext(ctx, "oauth callback completed", slog.Int("scopes", len(scoped.Scopes)))

		switch {
		case h.onSuccess != nil:
			h.onSuccess(w, r)
		case h.successRedirect != "":
			http.Redirect(w, r, h.successRedirect, http.StatusFound)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case h.onFailure != nil:
		h.onFailure(w, r, err)
	case h.failureRedirect != "":
		http.Redirect(w, r, h.failureRedirect, http.StatusFound)
	default:
		h.engine.logger.ErrorContext(r.Context(), "oauth callback failed", slog.String("error", err.Error()))
		http.Error(w, "Something went wrong, check the logs.", http.StatusInternalServerError)
	}
}

// requestScopes picks explicit scopes, then the engine defaults, then the
// scopes the provider was configured with.
func (e *Engine) requestScopes(scopes []string) []string {
	if len(scopes) > 0 {
		return scopes
	}
	if len(e.defaultScopes) > 0 {
		return e.defaultScopes
	}
	if p, ok := e.provider.(interface{ Scopes() []string }); ok {
		return p.Scopes()
	}
	return nil
}

// grantedScopes prefers the scope list in the token response over the requested one.
// The result is never nil.
func grantedScopes(tok interface{ Extra(string) any }, requested []string) []string {
	if s, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(s) != "" {
		return strings.Fields(s)
	}
	if requested == nil {
		return []string{}
	}
	return append([]string{}, requested...)
}
