package services

import (
	"context"
	"errors"
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

// VerificationService is the admin review of instructor documents.
type VerificationService struct {
	db   *gorm.DB
	gate *gate.Gate[auth.Caller]
	opts Options
}

func NewVerificationService(db *gorm.DB, g *gate.Gate[auth.Caller], opts Options) *VerificationService {
	return &VerificationService{db: db, gate: g, opts: opts.withDefaults()}
}

// ListPending returns instructors whose asset awaits review, oldest first.
func (s *VerificationService) ListPending(ctx context.Context, c auth.Caller) ([]models.Profile, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionList, policy.ResourceVerification, nil); err != nil {
		return nil, err
	}
	var out []models.Profile
	err := s.db.WithContext(ctx).
		Joins("JOIN instructor_assets ON instructor_assets.instructor_id = profiles.id").
		Preload("Asset").
		Where("profiles.role = ? AND instructor_assets.verification_status = ?", models.RoleInstructor, models.VerificationPending).
		Order("instructor_assets.updated_at asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Internal("list pending instructors", err)
	}
	return out, nil
}

type DecisionInput struct {
	Decision string `json:"decision"`
	// AssetUpdatedAt is the asset version the reviewer looked at. When set,
	// a decision on a since-edited asset is refused.
	AssetUpdatedAt *time.Time `json:"asset_updated_at,omitempty"`
}

// Decide approves or rejects an instructor. The asset status and the
// profile flag change together, against the asset as read in the same
// transaction.
func (s *VerificationService) Decide(ctx context.Context, c auth.Caller, instructorID string, in DecisionInput) (*models.Profile, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionDecide, policy.ResourceVerification, nil); err != nil {
		return nil, err
	}
	status := models.VerificationStatus(in.Decision)
	if status != models.VerificationApproved && status != models.VerificationRejected {
		return nil, apperr.Validation(validation.Violations{"decision": "invalid"})
	}
	verified := status == models.VerificationApproved

	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&profile, "id = ?", instructorID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !profile.IsInstructor()) {
			return apperr.NotFound("instructor")
		}
		if err != nil {
			return apperr.Internal("load instructor", err)
		}

		q := tx.Where("instructor_id = ?", profile.ID)
		if db.IsPostgres(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var asset models.InstructorAsset
		err = q.First(&asset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("instructor")
		}
		if err != nil {
			return apperr.Internal("load asset", err)
		}
		profile.Asset = &asset
		if err := authorize(ctx, s.gate, c, gate.ActionDecide, policy.ResourceVerification, &profile); err != nil {
			return err
		}
		if in.AssetUpdatedAt != nil && !sameInstant(*in.AssetUpdatedAt, asset.UpdatedAt) {
			return apperr.Conflict(apperr.CodeStaleReview, "")
		}

		if err := tx.Model(&models.InstructorAsset{}).
			Where("id = ?", asset.ID).
			Update("verification_status", status).Error; err != nil {
			return apperr.Internal("update asset status", err)
		}
		if err := tx.Model(&models.Profile{}).
			Where("id = ?", profile.ID).
			Update("document_verified", verified).Error; err != nil {
			return apperr.Internal("update profile verification", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.VerificationDecided(in.Decision)
	profile.DocumentVerified = verified
	profile.Asset.VerificationStatus = status
	return &profile, nil
}

// sameInstant compares at microsecond precision, the resolution PostgreSQL
// keeps for timestamps.
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}
