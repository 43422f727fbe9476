package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Port != 5432 {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
	if !cfg.Workflow.RequireVerifiedInstructor || !cfg.Workflow.ResetVerificationOnEdit {
		t.Fatalf("workflow policies should default to on")
	}
	if cfg.Storage.MaxUploadBytes != 5<<20 {
		t.Fatalf("expected 5MB upload limit, got %d", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Auth.JWTSecret != cfg.Auth.SessionSecret {
		t.Fatalf("JWT secret should fall back to the session secret")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("VERIFICATION_RESET_ON_EDIT", "false")
	t.Setenv("JWT_SECRET", "jwt")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("expected 2h token ttl, got %s", cfg.Auth.TokenTTL)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Workflow.ResetVerificationOnEdit {
		t.Fatalf("expected reset policy to be disabled")
	}
	if cfg.Auth.JWTSecret != "jwt" {
		t.Fatalf("expected explicit JWT secret")
	}
}

func TestLoadRejectsUnknownMigrationMode(t *testing.T) {
	t.Setenv("MIGRATION_MODE", "magic")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown migration mode")
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "lessons", SSLMode: "disable"}
	if d.DSN() != "host=db port=5432 user=u password=p dbname=lessons sslmode=disable" {
		t.Fatalf("unexpected DSN %s", d.DSN())
	}
	if d.URL() != "postgres://u:p@db:5432/lessons?sslmode=disable" {
		t.Fatalf("unexpected URL %s", d.URL())
	}
}
