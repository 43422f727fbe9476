package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/metrics"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/diewo77/go-lessons/validation"
	"gorm.io/gorm"
)

// AppointmentService owns the booking workflow and the appointment
// lifecycle.
type AppointmentService struct {
	db   *gorm.DB
	gate *gate.Gate[auth.Caller]
	opts Options
}

func NewAppointmentService(db *gorm.DB, g *gate.Gate[auth.Caller], opts Options) *AppointmentService {
	return &AppointmentService{db: db, gate: g, opts: opts.withDefaults()}
}

type CreateAppointmentInput struct {
	SlotID       string `json:"slot_id"`
	InstructorID string `json:"instructor_id"`
	Notes        string `json:"notes"`
}

// Create books a slot for the calling student. The slot is claimed with a
// conditional update so that concurrent bookings of the same slot resolve to
// exactly one winner; the loser gets slot_unavailable.
func (s *AppointmentService) Create(ctx context.Context, c auth.Caller, in CreateAppointmentInput) (*models.Appointment, error) {
	appt, err := s.create(ctx, c, in)
	switch {
	case err == nil:
		s.opts.Metrics.Booking(metrics.BookingCreated)
	case errors.Is(err, apperr.SlotUnavailable()):
		s.opts.Metrics.Booking(metrics.BookingUnavailable)
	default:
		s.opts.Metrics.Booking(metrics.BookingRejected)
	}
	return appt, err
}

func (s *AppointmentService) create(ctx context.Context, c auth.Caller, in CreateAppointmentInput) (*models.Appointment, error) {
	if c.IsZero() {
		return nil, apperr.Unauthenticated()
	}
	if err := authorize(ctx, s.gate, c, gate.ActionCreate, policy.ResourceAppointment, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	validation.Required("slot_id", in.SlotID, v)
	validation.Required("instructor_id", in.InstructorID, v)
	validation.MaxLen("notes", in.Notes, 1000, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	appt := &models.Appointment{
		SlotID:       in.SlotID,
		StudentID:    c.ID,
		InstructorID: in.InstructorID,
		Status:       models.StatusPending,
		Notes:        in.Notes,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.opts.RequireVerifiedInstructor {
			var inst models.Profile
			err := tx.Select("id", "role", "document_verified").First(&inst, "id = ?", in.InstructorID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.SlotUnavailable()
			}
			if err != nil {
				return apperr.Internal("load instructor", err)
			}
			if !inst.IsInstructor() || !inst.DocumentVerified {
				return apperr.Conflict(apperr.CodeInstructorNotVerified, "")
			}
		}

		res := tx.Model(&models.Slot{}).
			Where("id = ? AND instructor_id = ? AND is_booked = ? AND start_time > ?", in.SlotID, in.InstructorID, false, s.opts.now()).
			Update("is_booked", true)
		if res.Error != nil {
			return apperr.Internal("claim slot", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.SlotUnavailable()
		}
		if err := tx.Create(appt).Error; err != nil {
			return apperr.Internal("create appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// actionFor maps a target status to the gate action that guards it.
func actionFor(status models.AppointmentStatus) gate.Action {
	switch status {
	case models.StatusConfirmed:
		return gate.ActionConfirm
	case models.StatusCompleted:
		return gate.ActionComplete
	default:
		return gate.ActionCancel
	}
}

// UpdateStatus moves an appointment along its lifecycle. Cancelling
// releases the slot in the same transaction.
func (s *AppointmentService) UpdateStatus(ctx context.Context, c auth.Caller, id, status string) (*models.Appointment, error) {
	next, ok := models.ParseStatus(status)
	if !ok || next == models.StatusPending {
		return nil, apperr.Validation(validation.Violations{"status": "invalid"})
	}
	if c.IsZero() {
		return nil, apperr.Unauthenticated()
	}

	var appt models.Appointment
	err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("appointment")
	}
	if err != nil {
		return nil, apperr.Internal("load appointment", err)
	}
	if err := authorize(ctx, s.gate, c, actionFor(next), policy.ResourceAppointment, &appt); err != nil {
		return nil, err
	}

	current := appt.Status
	if !current.CanTransitionTo(next) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, fmt.Sprintf("%s -> %s", current, next))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, current).
			Update("status", next)
		if res.Error != nil {
			return apperr.Internal("update appointment status", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict(apperr.CodeConcurrentUpdate, "")
		}
		if next == models.StatusCancelled {
			if err := tx.Model(&models.Slot{}).Where("id = ?", appt.SlotID).Update("is_booked", false).Error; err != nil {
				return apperr.Internal("release slot", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.Transition(string(current), string(next))
	appt.Status = next
	return &appt, nil
}

// ListForStudent returns the caller's bookings with slot and instructor,
// newest first.
func (s *AppointmentService) ListForStudent(ctx context.Context, c auth.Caller) ([]models.Appointment, error) {
	return s.list(ctx, c, models.RoleStudent)
}

// ListForInstructor returns the caller's bookings with slot and student,
// newest first.
func (s *AppointmentService) ListForInstructor(ctx context.Context, c auth.Caller) ([]models.Appointment, error) {
	return s.list(ctx, c, models.RoleInstructor)
}

func (s *AppointmentService) list(ctx context.Context, c auth.Caller, side models.Role) ([]models.Appointment, error) {
	if err := s.requireSide(ctx, c, side); err != nil {
		return nil, err
	}
	column, counterparty := sideColumns(side)
	var out []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Slot").
		Preload(counterparty).
		Where(column+" = ?", c.ID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("list appointments", err)
	}
	return out, nil
}

// requireSide checks that the caller may list appointments and plays side.
func (s *AppointmentService) requireSide(ctx context.Context, c auth.Caller, side models.Role) error {
	if err := authorize(ctx, s.gate, c, gate.ActionList, policy.ResourceAppointment, nil); err != nil {
		return err
	}
	if !c.Is(string(side)) {
		return apperr.Forbidden()
	}
	return nil
}

func sideColumns(side models.Role) (column, counterparty string) {
	if side == models.RoleInstructor {
		return "instructor_id", "Student"
	}
	return "student_id", "Instructor"
}
