// Package db opens the database, applies migrations and seeds baseline data.
package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/diewo77/go-lessons/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using cfg. Postgres connections are retried to give the
// server time to start.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), NowFunc: func() time.Time { return time.Now().UTC() }}

	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.RawDSN
		if dsn == "" {
			dsn = "file:lessons.db?_foreign_keys=on"
		}
		return gorm.Open(sqlite.Open(dsn), gcfg)
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	dsn := PostgresDSN(cfg)
	log.Printf("Connecting to database: %s", MaskDSN(dsn))
	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Printf("database connection attempt %d/10 failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return db, nil
}

// PostgresDSN returns the normalized DATABASE_DSN when set, else the DSN
// built from discrete settings.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if dsn := NormalizeDSN(cfg.RawDSN); dsn != "" {
		return dsn
	}
	return cfg.DSN()
}

// IsPostgres reports whether db talks to PostgreSQL.
func IsPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

var errMissingTable = errors.New("missing table after migration")
