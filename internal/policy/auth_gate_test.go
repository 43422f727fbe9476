package policy_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/db"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func createProfile(t *testing.T, d *gorm.DB, role models.Role) *models.Profile {
	t.Helper()
	p := &models.Profile{Role: role, FullName: "Test " + string(role), Email: string(role) + "@example.com"}
	if err := d.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func TestDBRoleResolver(t *testing.T) {
	d := setupDB(t)
	p := createProfile(t, d, models.RoleInstructor)
	r := policy.NewDBRoleResolver(d)

	got, err := r.Resolve(context.Background(), p.ID)
	if err != nil || got == nil || got.Name() != string(models.RoleInstructor) {
		t.Fatalf("expected instructor profile, got %v %v", got, err)
	}
	got, err = r.Resolve(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("expected no profile for unknown user, got %v %v", got, err)
	}
}

func TestAuthGate_Lookup(t *testing.T) {
	d := setupDB(t)
	p := createProfile(t, d, models.RoleStudent)
	ag := policy.NewAuthGate(d, time.Minute, nil)

	role, err := ag.Lookup(context.Background(), p.ID)
	if err != nil || role != string(models.RoleStudent) {
		t.Fatalf("expected STUDENT, got %q %v", role, err)
	}
	role, err = ag.Lookup(context.Background(), "missing")
	if err != nil || role != "" {
		t.Fatalf("expected empty role, got %q %v", role, err)
	}
}

func TestRedisRoleResolver_FallsBackWhenRedisDown(t *testing.T) {
	d := setupDB(t)
	p := createProfile(t, d, models.RoleAdmin)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })

	r := policy.NewRedisRoleResolver(policy.NewDBRoleResolver(d), rdb, time.Minute)
	got, err := r.Resolve(context.Background(), p.ID)
	if err != nil || got == nil || got.Name() != string(models.RoleAdmin) {
		t.Fatalf("expected admin profile from the database, got %v %v", got, err)
	}
}

func TestAuthGate_Middleware(t *testing.T) {
	ag := policy.NewAuthGate(setupDB(t), time.Minute, nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name    string
		handler http.Handler
		caller  *auth.Caller
		want    int
	}{
		{"role anonymous", ag.RequireRole(models.RoleInstructor)(ok), nil, http.StatusUnauthorized},
		{"role mismatch", ag.RequireRole(models.RoleInstructor)(ok), &student, http.StatusForbidden},
		{"role match", ag.RequireRole(models.RoleInstructor, models.RoleAdmin)(ok), &admin, http.StatusNoContent},
		{"permission anonymous", ag.RequirePermission(policy.ResourceStats, gate.ActionView)(ok), nil, http.StatusUnauthorized},
		{"permission denied", ag.RequirePermission(policy.ResourceStats, gate.ActionView)(ok), &student, http.StatusForbidden},
		{"permission granted", ag.RequirePermission(policy.ResourceStats, gate.ActionView)(ok), &instructor, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.caller != nil {
				req = req.WithContext(auth.WithCaller(req.Context(), *tt.caller))
			}
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
