package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Slot is a time window an instructor offers for booking. IsBooked is true
// exactly while one non-cancelled appointment references the slot.
type Slot struct {
	ID              string           `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	InstructorID    string           `gorm:"size:36;not null;index:idx_slot_instructor_start" json:"instructor_id"`
	StartTime       time.Time        `gorm:"not null;index:idx_slot_instructor_start" json:"start_time"`
	EndTime         time.Time        `gorm:"not null" json:"end_time"`
	Price           float64          `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	LocationAddress string           `gorm:"size:500;not null" json:"location_address"`
	Category        *LicenseCategory `gorm:"size:3" json:"category,omitempty"`
	IsBooked        bool             `gorm:"not null;default:false;index" json:"is_booked"`
	Instructor      *Profile         `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"instructor,omitempty"`
}

func (s *Slot) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// GetOwnerID returns the instructor owning the slot.
func (s *Slot) GetOwnerID() string { return s.InstructorID }
