// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Workflow WorkflowConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string   `env:"PORT" envDefault:"8080"`
	ReadTimeout  int      `env:"SERVER_READ_TIMEOUT" envDefault:"15"` // seconds
	WriteTimeout int      `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"`
	IdleTimeout  int      `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// DatabaseConfig holds connection settings. RawDSN, when set, wins over the
// discrete fields.
type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"lessons"`
	Password string `env:"DB_PASSWORD" envDefault:"lessons123"`
	DBName   string `env:"DB_NAME" envDefault:"lessons"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	RawDSN   string `env:"DATABASE_DSN"`
	Debug    bool   `env:"DB_DEBUG"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool   `env:"DEV" envDefault:"true"`
	Migrations    bool   `env:"MIGRATIONS" envDefault:"false"`
	MigrationMode string `env:"MIGRATION_MODE" envDefault:"auto"` // auto | sql
	Timezone      string `env:"APP_TIMEZONE" envDefault:"UTC"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Admin"`
}

// AuthConfig holds session and token settings.
type AuthConfig struct {
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"devsessionsecret"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"go-lessons"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	RoleCacheTTL  time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`
}

// RedisConfig enables the shared role cache when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// StorageConfig configures the local document store.
type StorageConfig struct {
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicPrefix   string `env:"UPLOAD_PUBLIC_PREFIX" envDefault:"/uploads"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
}

// WorkflowConfig holds the booking and verification policies.
type WorkflowConfig struct {
	RequireVerifiedInstructor bool `env:"REQUIRE_VERIFIED_INSTRUCTOR" envDefault:"true"`
	ResetVerificationOnEdit   bool `env:"VERIFICATION_RESET_ON_EDIT" envDefault:"true"`
	AvailableSlotsLimit       int  `env:"AVAILABLE_SLOTS_LIMIT" envDefault:"20"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location returns the configured timezone, UTC when it cannot be loaded.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables with local
// development defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = cfg.Auth.SessionSecret
	}
	switch cfg.App.MigrationMode {
	case "auto", "sql":
	default:
		return nil, fmt.Errorf("invalid MIGRATION_MODE %q", cfg.App.MigrationMode)
	}
	return &cfg, nil
}
