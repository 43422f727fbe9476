package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LicenseCategory string

const (
	CategoryA   LicenseCategory = "A"
	CategoryB   LicenseCategory = "B"
	CategoryAB  LicenseCategory = "AB"
	CategoryACC LicenseCategory = "ACC"
)

// LicenseCategories lists the accepted categories in display order.
var LicenseCategories = []string{string(CategoryA), string(CategoryB), string(CategoryAB), string(CategoryACC)}

// Covers reports whether an instructor licensed for c can teach want.
// AB instructors teach both A and B lessons.
func (c LicenseCategory) Covers(want LicenseCategory) bool {
	if c == want {
		return true
	}
	return c == CategoryAB && (want == CategoryA || want == CategoryB)
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// InstructorAsset is the vehicle and document record of an instructor.
// Approved status always goes together with Profile.DocumentVerified.
type InstructorAsset struct {
	ID                 string             `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	InstructorID       string             `gorm:"size:36;not null;uniqueIndex" json:"instructor_id"`
	VehicleModel       string             `gorm:"size:120" json:"vehicle_model"`
	LicensePlate       string             `gorm:"size:20" json:"license_plate"`
	LicenseCategory    LicenseCategory    `gorm:"size:3" json:"license_category"`
	LicensePhotoURL    string             `gorm:"size:500" json:"license_photo_url,omitempty"`
	CredentialPhotoURL string             `gorm:"size:500" json:"credential_photo_url,omitempty"`
	VerificationStatus VerificationStatus `gorm:"size:20;not null;default:'pending';index" json:"verification_status"`
}

func (a *InstructorAsset) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.VerificationStatus == "" {
		a.VerificationStatus = VerificationPending
	}
	return nil
}
