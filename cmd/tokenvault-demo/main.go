// Command tokenvault-demo serves the consent flow and a few pages that use
// the stored credentials. Configuration comes from the environment; see
// tokenvault.Config.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tokenvault"
	"github.com/dmitrymomot/tokenvault/pkg/cookie"
	"github.com/dmitrymomot/tokenvault/pkg/health"
	"github.com/dmitrymomot/tokenvault/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	userCookie      = "uid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tokenvault-demo failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := tokenvault.LoadConfig()
	if err != nil {
		return err
	}

	engine, deps, err := tokenvault.Open(ctx, cfg)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, requestIDExtractor, engine.LogExtractor())
	app := &demo{engine: engine, cookies: cookie.New(), log: log}

	server := &http.Server{
		Addr:              envOr("ADDRESS", ":8080"),
		Handler:           app.routes(deps.Checks),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(err, deps.Shutdown(context.Background()))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return errors.Join(server.Shutdown(shutdownCtx), deps.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

type demo struct {
	engine  *tokenvault.Engine
	cookies *cookie.Manager
	log     *slog.Logger
}

func (d *demo) routes(checks health.Checks) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(d.log)))

	r.Group(func(r chi.Router) {
		r.Use(d.engine.Middleware)

		d.engine.Handlers(
			tokenvault.WithSuccessHandler(d.signedIn),
			tokenvault.WithFailureHandler(d.signInFailed),
		).Routes(r)

		r.Get("/", d.home)
		r.Get("/me", d.me)
		r.Post("/signout", d.signOut)
	})
	return r
}

// signedIn remembers the user id for datastore storage and goes home.
func (d *demo) signedIn(w http.ResponseWriter, r *http.Request) {
	if d.engine.StorageMethod() == tokenvault.StorageDatastore {
		id, err := d.engine.UserID(r.Context())
		if err != nil {
			d.signInFailed(w, r, err)
			return
		}
		d.cookies.Set(w, r, userCookie, id, 0)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (d *demo) signInFailed(w http.ResponseWriter, r *http.Request, err error) {
	d.log.WarnContext(r.Context(), "sign in failed", slog.String("error", err.Error()))
	http.Error(w, "Sign in failed.", http.StatusUnauthorized)
}

func (d *demo) home(w http.ResponseWriter, r *http.Request) {
	if !d.engine.TryAuthenticate(r.Context(), d.userID(r)) {
		http.Redirect(w, r, tokenvault.DefaultInitPath, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/me", http.StatusFound)
}

func (d *demo) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scoped, err := d.engine.AuthenticatedScopedToken(ctx, d.userID(r))
	switch {
	case errors.Is(err, tokenvault.ErrUnknownUser), errors.Is(err, tokenvault.ErrUserIDRequired):
		http.Redirect(w, r, tokenvault.DefaultInitPath, http.StatusFound)
		return
	case err != nil:
		d.log.ErrorContext(ctx, "authentication failed", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"scopes":     scoped.Scopes,
		"expires_at": scoped.Token.Expiry(),
	}
	if tokenvault.HasIdentityScope(scoped.Scopes) {
		if id, err := d.engine.UserID(ctx); err == nil {
			resp["user_id"] = id
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (d *demo) signOut(w http.ResponseWriter, r *http.Request) {
	if err := d.engine.SignOut(r.Context(), d.userID(r)); err != nil && !errors.Is(err, tokenvault.ErrUserIDRequired) {
		d.log.ErrorContext(r.Context(), "sign out failed", slog.String("error", err.Error()))
	}
	d.cookies.Delete(w, r, userCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (d *demo) userID(r *http.Request) string {
	id, _ := d.cookies.Get(r, userCookie)
	return id
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
