package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/internal/config"
	"github.com/diewo77/go-lessons/internal/models"
	"gorm.io/gorm"
)

// Seed creates the bootstrap admin when ADMIN_EMAIL and ADMIN_PASSWORD are
// set. Admins cannot sign up, so this is the only way to create one.
// Running it twice is a no-op.
func Seed(db *gorm.DB, app config.AppConfig) error {
	email := strings.ToLower(strings.TrimSpace(app.AdminEmail))
	if email == "" || app.AdminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set; skipping admin seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Account
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup admin account: %w", err)
		}

		hash, err := auth.HashPassword(app.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		profile := models.Profile{Role: models.RoleAdmin, FullName: app.AdminName, Email: email}
		if err := tx.Create(&profile).Error; err != nil {
			return fmt.Errorf("create admin profile: %w", err)
		}
		account := models.Account{ID: profile.ID, Email: email, PasswordHash: hash}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("create admin account: %w", err)
		}
		log.Printf("Seeded admin account %s", email)
		return nil
	})
}
