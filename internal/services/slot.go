package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/db"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/diewo77/go-lessons/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotService manages the availability published by instructors.
type SlotService struct {
	db   *gorm.DB
	gate *gate.Gate[auth.Caller]
	opts Options
}

func NewSlotService(db *gorm.DB, g *gate.Gate[auth.Caller], opts Options) *SlotService {
	return &SlotService{db: db, gate: g, opts: opts.withDefaults()}
}

type CreateSlotInput struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Price           float64   `json:"price"`
	LocationAddress string    `json:"location_address"`
	Category        string    `json:"category"`
}

func (in CreateSlotInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.RequiredTime("start_time", in.StartTime, v)
	validation.RequiredTime("end_time", in.EndTime, v)
	if !in.StartTime.IsZero() && !in.EndTime.IsZero() {
		validation.After("end_time", in.StartTime, in.EndTime, v)
	}
	validation.NonNegativeFloat("price", in.Price, v)
	validation.Required("location_address", in.LocationAddress, v)
	validation.MaxLen("location_address", in.LocationAddress, 500, v)
	validation.OneOf("category", in.Category, models.LicenseCategories, v)
	return v
}

// CreateSlot publishes a new slot for the calling instructor. Overlap with
// the instructor's other slots is checked inside the insert transaction.
func (s *SlotService) CreateSlot(ctx context.Context, c auth.Caller, in CreateSlotInput) (*models.Slot, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionCreate, policy.ResourceSlot, nil); err != nil {
		return nil, err
	}
	if v := in.validate(); !v.Empty() {
		return nil, apperr.Validation(v)
	}

	slot := &models.Slot{
		InstructorID:    c.ID,
		StartTime:       in.StartTime.UTC(),
		EndTime:         in.EndTime.UTC(),
		Price:           in.Price,
		LocationAddress: strings.TrimSpace(in.LocationAddress),
	}
	if in.Category != "" {
		cat := models.LicenseCategory(in.Category)
		slot.Category = &cat
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Profile{}).Select("id").Where("id = ?", c.ID)
		if db.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var owner models.Profile
		if err := q.First(&owner).Error; err != nil {
			return apperr.Internal("lock instructor", err)
		}

		var overlapping int64
		err := tx.Model(&models.Slot{}).
			Where("instructor_id = ? AND start_time < ? AND end_time > ?", c.ID, slot.EndTime, slot.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return apperr.Internal("check overlap", err)
		}
		if overlapping > 0 {
			return apperr.Conflict(apperr.CodeOverlapConflict, "")
		}
		if err := tx.Create(slot).Error; err != nil {
			return apperr.Internal("create slot", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.SlotCreated()
	return slot, nil
}

// DeleteSlot removes an unbooked slot owned by the caller. Booked slots are
// reported as not found. A slot that any appointment points at, cancelled
// ones included, is kept so both parties retain their history.
func (s *SlotService) DeleteSlot(ctx context.Context, c auth.Caller, id string) error {
	if c.IsZero() {
		return apperr.Unauthenticated()
	}
	if !s.gate.CanProfile(ctx, c, gate.ActionDelete, policy.ResourceSlot) {
		return apperr.Forbidden()
	}
	var slot models.Slot
	err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("slot")
	}
	if err != nil {
		return apperr.Internal("load slot", err)
	}
	if err := authorize(ctx, s.gate, c, gate.ActionDelete, policy.ResourceSlot, &slot); err != nil {
		return err
	}

	if slot.IsBooked {
		return apperr.NotFound("slot")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Appointment{}).Where("slot_id = ?", id).Count(&refs).Error; err != nil {
			return apperr.Internal("count slot appointments", err)
		}
		if refs > 0 {
			return apperr.Conflict(apperr.CodeSlotInUse, "")
		}
		res := tx.Where("id = ? AND instructor_id = ? AND is_booked = ?", id, c.ID, false).
			Delete(&models.Slot{})
		if res.Error != nil {
			return apperr.Internal("delete slot", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("slot")
		}
		return nil
	})
}

// ListAvailable returns the instructor's unbooked future slots in start
// order. Public; with RequireVerifiedInstructor an instructor who has not
// passed review answers not found.
func (s *SlotService) ListAvailable(ctx context.Context, instructorID string, limit int) ([]models.Slot, error) {
	if s.opts.RequireVerifiedInstructor {
		var inst models.Profile
		err := s.db.WithContext(ctx).Preload("Asset").First(&inst, "id = ?", instructorID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (!inst.IsInstructor() || !approved(&inst))) {
			return nil, apperr.NotFound("instructor")
		}
		if err != nil {
			return nil, apperr.Internal("load instructor", err)
		}
	}
	var out []models.Slot
	err := s.db.WithContext(ctx).
		Where("instructor_id = ? AND is_booked = ? AND start_time >= ?", instructorID, false, s.opts.now()).
		Order("start_time asc").
		Limit(clampLimit(limit, s.opts.AvailableSlotsLimit)).
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("list available slots", err)
	}
	return out, nil
}

// ListMine returns all of the calling instructor's slots in start order.
func (s *SlotService) ListMine(ctx context.Context, c auth.Caller) ([]models.Slot, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionList, policy.ResourceSlot, nil); err != nil {
		return nil, err
	}
	var out []models.Slot
	err := s.db.WithContext(ctx).
		Where("instructor_id = ?", c.ID).
		Order("start_time asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("list slots", err)
	}
	return out, nil
}
