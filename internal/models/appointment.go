package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// transitions is the full lifecycle; anything not listed is rejected.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseStatus accepts only the four known statuses.
func ParseStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Appointment binds one slot, one student and one instructor.
// InstructorID is copied from the slot at creation.
type Appointment struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	SlotID       string            `gorm:"size:36;not null;index" json:"slot_id"`
	StudentID    string            `gorm:"size:36;not null;index" json:"student_id"`
	InstructorID string            `gorm:"size:36;not null;index" json:"instructor_id"`
	Status       AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	Slot         *Slot             `gorm:"foreignKey:SlotID;constraint:OnDelete:RESTRICT" json:"slot,omitempty"`
	Student      *Profile          `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Instructor   *Profile          `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

func (a *Appointment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// ParticipantRole returns the side userID plays in the appointment, or ""
// when userID is not a party.
func (a *Appointment) ParticipantRole(userID string) Role {
	switch userID {
	case "":
		return ""
	case a.InstructorID:
		return RoleInstructor
	case a.StudentID:
		return RoleStudent
	}
	return ""
}
