package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/diewo77/go-lessons/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.Profile{},
		&models.Account{},
		&models.InstructorAsset{},
		&models.Slot{},
		&models.Appointment{},
	}
}

// liveSlotIndex backs the booking workflow: at most one non-cancelled
// appointment per slot. Supported by both PostgreSQL and SQLite.
const liveSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_live_slot ON appointments (slot_id) WHERE status <> 'cancelled'`

// Migrate applies the schema with GORM AutoMigrate.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	if err := db.Exec(liveSlotIndex).Error; err != nil {
		return fmt.Errorf("create live slot index: %w", err)
	}
	for _, table := range []string{"profiles", "accounts", "instructor_assets", "slots", "appointments"} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("%w: %s", errMissingTable, table)
		}
	}
	return nil
}

// MigrateSQL runs the embedded SQL migrations against a PostgreSQL DSN.
func MigrateSQL(dsn string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, ToURLDSN(dsn))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("migrate close: source=%v db=%v", srcErr, dbErr)
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
