package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/validation"
	"gorm.io/gorm"
)

const minPasswordLen = 8

// AccountService is the built-in identity provider.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// Signup creates a Profile and its Account. Only students and instructors
// may register themselves.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Email("email", email, v)
	validation.Required("full_name", in.FullName, v)
	validation.MaxLen("full_name", in.FullName, 255, v)
	validation.MaxLen("phone", in.Phone, 30, v)
	validation.Required("role", in.Role, v)
	validation.OneOf("role", in.Role, []string{string(models.RoleStudent), string(models.RoleInstructor)}, v)
	if len(in.Password) < minPasswordLen {
		v["password"] = "too_short"
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	profile := &models.Profile{
		Role:     models.Role(in.Role),
		FullName: strings.TrimSpace(in.FullName),
		Email:    email,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		profile.Phone = &phone
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return apperr.Internal("check email", err)
		}
		if n > 0 {
			return apperr.Conflict(apperr.CodeEmailTaken, "")
		}
		if err := tx.Create(profile).Error; err != nil {
			return apperr.Internal("create profile", err)
		}
		account := models.Account{ID: profile.ID, Email: email, PasswordHash: hash}
		if err := tx.Create(&account).Error; err != nil {
			return apperr.Internal("create account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func errInvalidCredentials() *apperr.Error {
	return apperr.New(apperr.KindUnauthenticated, apperr.CodeInvalidCredentials, "")
}

// Authenticate checks credentials and returns the matching profile.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials()
	}
	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errInvalidCredentials()
	}
	if err != nil {
		return nil, apperr.Internal("load account", err)
	}
	if !auth.CheckPassword(account.PasswordHash, password) {
		return nil, errInvalidCredentials()
	}
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", account.ID).Error; err != nil {
		return nil, apperr.Internal("load profile", err)
	}
	return &profile, nil
}
