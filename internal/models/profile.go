package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Profile is the canonical record of a person. Role is fixed at creation
// and DocumentVerified is only written by the admin verification workflow.
type Profile struct {
	ID               string           `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Role             Role             `gorm:"size:20;not null;index" json:"role"`
	FullName         string           `gorm:"size:255;not null" json:"full_name"`
	Email            string           `gorm:"size:255;not null" json:"email"`
	Phone            *string          `gorm:"size:30" json:"phone,omitempty"`
	AvatarURL        *string          `gorm:"size:500" json:"avatar_url,omitempty"`
	Bio              *string          `gorm:"type:text" json:"bio,omitempty"`
	DocumentVerified bool             `gorm:"not null;default:false" json:"document_verified"`
	NationalID       *string          `gorm:"size:20" json:"national_id,omitempty"`
	LicenseNumber    *string          `gorm:"size:30" json:"license_number,omitempty"`
	Asset            *InstructorAsset `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"asset,omitempty"`
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Profile) IsInstructor() bool { return p.Role == RoleInstructor }

// Account holds login credentials; its ID equals the Profile ID.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
}
