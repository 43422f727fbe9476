package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/httpx"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AuthGate is the central authorization point of the HTTP layer: it resolves
// roles for the authenticator and guards route groups.
type AuthGate struct {
	Gate  *gate.Gate[auth.Caller]
	Roles *gate.CachedResolver[string]
}

// NewAuthGate wires the role lookup chain DB -> (Redis) -> in-process cache.
// rdb may be nil.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration, rdb *redis.Client) *AuthGate {
	var resolver gate.ProfileResolver[string] = NewDBRoleResolver(db)
	if rdb != nil {
		resolver = NewRedisRoleResolver(resolver, rdb, cacheTTL)
	}
	return &AuthGate{
		Gate:  NewGate(),
		Roles: gate.NewCachedResolver[string](resolver, cacheTTL),
	}
}

// Lookup returns the role of userID, "" for unknown users. It satisfies
// auth.RoleLookup.
func (ag *AuthGate) Lookup(ctx context.Context, userID string) (string, error) {
	p, err := ag.Roles.Resolve(ctx, userID)
	if err != nil || p == nil {
		return "", err
	}
	return p.Name(), nil
}

// RequirePermission blocks callers whose role lacks resource:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := auth.CallerFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, r, apperr.Unauthenticated())
				return
			}
			if !ag.Gate.CanProfile(r.Context(), c, action, resourceType) {
				httpx.WriteError(w, r, apperr.Forbidden())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole restricts a route group to the given roles.
func (ag *AuthGate) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := auth.CallerFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, r, apperr.Unauthenticated())
				return
			}
			for _, role := range roles {
				if c.Is(string(role)) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.WriteError(w, r, apperr.Forbidden())
		})
	}
}
