package internal

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/tokenvault/pkg/token"
)

// Mode is the execution model the engine runs under.
type Mode string

const (
	// ModeHTTP serves concurrent requests. Request state lives in the context
	// and is attached by Engine.Middleware or WithRequest.
	ModeHTTP Mode = "http"

	// ModeSingleInvocation runs one invocation at a time (jobs, CLI tools,
	// non-HTTP function triggers). Without a request scope in the context a
	// single process-wide state is used until Engine.EndInvocation.
	ModeSingleInvocation Mode = "single-invocation"
)

// ParseMode converts a configuration value into a Mode. Empty selects ModeHTTP.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeHTTP, nil
	case ModeHTTP, ModeSingleInvocation:
		return m, nil
	default:
		return "", ErrUnsupportedExecutionMode
	}
}

type requestStateKey struct{}

// requestState is the per-request session cache.
// mu serialises authentication and identity lookups within one request.
type requestState struct {
	w      http.ResponseWriter
	r      *http.Request
	client *Client
	scoped *token.Scoped
	userID atomic.Value // string; read lock-free by the log extractor
	mu     sync.Mutex
}

func newRequestState(w http.ResponseWriter, r *http.Request) *requestState {
	return &requestState{w: w, r: r}
}

func (s *requestState) resolvedUserID() string {
	v, _ := s.userID.Load().(string)
	return v
}

func (s *requestState) install(scoped *token.Scoped) {
	s.scoped = scoped
	s.client = newClient(scoped)
	s.userID.Store("")
}

func (s *requestState) reset() {
	s.scoped = nil
	s.client = nil
	s.userID.Store("")
}

// WithRequest returns a context carrying a fresh, empty session scope for the
// request/response pair. Each call starts a new scope.
func WithRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, requestStateKey{}, newRequestState(w, r))
}

// HasRequest reports whether ctx carries a session scope.
func HasRequest(ctx context.Context) bool {
	_, ok := requestStateFrom(ctx)
	return ok
}

func requestStateFrom(ctx context.Context) (*requestState, bool) {
	if ctx == nil {
		return nil, false
	}
	st, ok := ctx.Value(requestStateKey{}).(*requestState)
	return st, ok && st != nil
}

// Middleware attaches a session scope to every request.
func (e *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if HasRequest(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithRequest(r.Context(), w, r)))
	})
}

// EndInvocation discards the process-wide state used in ModeSingleInvocation.
// It is a no-op in ModeHTTP.
func (e *Engine) EndInvocation() {
	if e.mode != ModeSingleInvocation {
		return
	}
	e.invocationMu.Lock()
	e.invocation = nil
	e.invocationMu.Unlock()
}

// state returns the session scope for ctx. In ModeHTTP it must come from the
// context and carry both request and response; in ModeSingleInvocation a
// context scope wins and the process-wide state is the fallback.
func (e *Engine) state(ctx context.Context) (*requestState, error) {
	st, ok := requestStateFrom(ctx)

	if e.mode == ModeSingleInvocation {
		if ok {
			return st, nil
		}
		e.invocationMu.Lock()
		defer e.invocationMu.Unlock()
		if e.invocation == nil {
			e.invocation = newRequestState(nil, nil)
		}
		return e.invocation, nil
	}

	if !ok || st.w == nil || st.r == nil {
		return nil, ErrMissingRequestContext
	}
	return st, nil
}
