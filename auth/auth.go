package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/apperr"
)

// Caller is the authenticated identity of a request. It is built once by
// Middleware and passed explicitly to every service call.
type Caller struct {
	ID   string
	Role string
}

func (c Caller) IsZero() bool       { return c.ID == "" }
func (c Caller) Is(role string) bool { return c.ID != "" && c.Role == role }

type ctxKey string

const callerCtxKey = ctxKey("caller")

// WithCaller stores the caller in context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, c)
}

// CallerFromContext extracts the caller; ok is false for anonymous requests.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerCtxKey).(Caller)
	if !ok || c.IsZero() {
		return Caller{}, false
	}
	return c, true
}

// RoleLookup returns the role of an existing user, or "" when the user is unknown.
type RoleLookup func(ctx context.Context, userID string) (string, error)

// Options configures an Authenticator.
type Options struct {
	SessionSecret string
	TokenSecret   string
	Issuer        string
	TokenTTL      time.Duration
	SessionTTL    time.Duration
	SecureCookie  bool
}

// Authenticator issues and verifies session cookies and bearer tokens.
type Authenticator struct {
	opts   Options
	lookup RoleLookup
}

// New creates an Authenticator. lookup is consulted on every request so that
// deleted users lose access immediately.
func New(opts Options, lookup RoleLookup) *Authenticator {
	if opts.SessionSecret == "" {
		opts.SessionSecret = "devsessionsecret"
	}
	if opts.TokenSecret == "" {
		opts.TokenSecret = opts.SessionSecret
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	return &Authenticator{opts: opts, lookup: lookup}
}

// Middleware attaches the caller to the request context when a valid bearer
// token or session cookie is present.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, fromCookie := a.identify(r)
		if uid == "" {
			next.ServeHTTP(w, r)
			return
		}
		role, err := a.lookup(r.Context(), uid)
		if err != nil {
			log.Printf("auth: role lookup for %s: %v", uid, err)
		}
		if role == "" {
			if fromCookie {
				a.ClearSession(w)
			}
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(WithCaller(r.Context(), Caller{ID: uid, Role: role}))
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) identify(r *http.Request) (uid string, fromCookie bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if claims, err := a.ParseToken(strings.TrimSpace(token)); err == nil {
				return claims.UserID, false
			}
		}
		return "", false
	}
	if id, ok := a.ParseSession(r); ok {
		return id, true
	}
	return "", false
}

// RequireAuth answers 401 when the request has no caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFromContext(r.Context()); !ok {
			httpx.WriteError(w, r, apperr.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}
