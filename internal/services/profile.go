package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
	"github.com/diewo77/go-lessons/validation"
	"gorm.io/gorm"
)

// ProfileService serves the profile directory and the instructor asset
// registry.
type ProfileService struct {
	db   *gorm.DB
	gate *gate.Gate[auth.Caller]
	opts Options
}

func NewProfileService(db *gorm.DB, g *gate.Gate[auth.Caller], opts Options) *ProfileService {
	return &ProfileService{db: db, gate: g, opts: opts.withDefaults()}
}

// ProfileUpdate lists the self-service fields. Nil means unchanged, an
// empty string clears an optional field.
type ProfileUpdate struct {
	FullName      *string `json:"full_name"`
	Phone         *string `json:"phone"`
	Bio           *string `json:"bio"`
	AvatarURL     *string `json:"avatar_url"`
	NationalID    *string `json:"national_id"`
	LicenseNumber *string `json:"license_number"`
}

func (in ProfileUpdate) changes(v validation.Violations) map[string]any {
	updates := map[string]any{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		validation.Required("full_name", name, v)
		validation.MaxLen("full_name", name, 255, v)
		updates["full_name"] = name
	}
	optional := []struct {
		column string
		value  *string
		max    int
	}{
		{"phone", in.Phone, 30},
		{"bio", in.Bio, 2000},
		{"avatar_url", in.AvatarURL, 500},
		{"national_id", in.NationalID, 20},
		{"license_number", in.LicenseNumber, 30},
	}
	for _, f := range optional {
		if f.value == nil {
			continue
		}
		val := strings.TrimSpace(*f.value)
		validation.MaxLen(f.column, val, f.max, v)
		if val == "" {
			updates[f.column] = nil
		} else {
			updates[f.column] = val
		}
	}
	return updates
}

// AssetUpdate lists the instructor-editable asset fields.
type AssetUpdate struct {
	VehicleModel       *string `json:"vehicle_model"`
	LicensePlate       *string `json:"license_plate"`
	LicenseCategory    *string `json:"license_category"`
	LicensePhotoURL    *string `json:"license_photo_url"`
	CredentialPhotoURL *string `json:"credential_photo_url"`
}

func (in AssetUpdate) changes(v validation.Violations) map[string]any {
	updates := map[string]any{}
	fields := []struct {
		column string
		value  *string
		max    int
	}{
		{"vehicle_model", in.VehicleModel, 120},
		{"license_plate", in.LicensePlate, 20},
		{"license_category", in.LicenseCategory, 3},
		{"license_photo_url", in.LicensePhotoURL, 500},
		{"credential_photo_url", in.CredentialPhotoURL, 500},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		val := strings.TrimSpace(*f.value)
		validation.MaxLen(f.column, val, f.max, v)
		if val == "" && f.column == "license_category" {
			updates[f.column] = nil
		} else {
			updates[f.column] = val
		}
	}
	if in.LicenseCategory != nil {
		validation.OneOf("license_category", strings.TrimSpace(*in.LicenseCategory), models.LicenseCategories, v)
	}
	return updates
}

type InstructorDataInput struct {
	Profile ProfileUpdate `json:"profile"`
	Asset   AssetUpdate   `json:"asset"`
}

// Get returns the caller's own profile, with the asset for instructors.
func (s *ProfileService) Get(ctx context.Context, c auth.Caller) (*models.Profile, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionView, policy.ResourceProfile, nil); err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, c.ID)
}

func (s *ProfileService) load(ctx context.Context, tx *gorm.DB, id string) (*models.Profile, error) {
	var p models.Profile
	err := tx.WithContext(ctx).Preload("Asset").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("profile")
	}
	if err != nil {
		return nil, apperr.Internal("load profile", err)
	}
	return &p, nil
}

// UpdateProfile applies whitelisted fields. Role and document_verified are
// never touched here.
func (s *ProfileService) UpdateProfile(ctx context.Context, c auth.Caller, in ProfileUpdate) (*models.Profile, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionUpdate, policy.ResourceProfile, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	updates := in.changes(v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", c.ID).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("update profile", err)
		}
	}
	return s.load(ctx, s.db, c.ID)
}

// UpdateInstructorData updates the instructor's profile fields and upserts
// the asset in one transaction. A new asset starts pending; editing an
// existing one sends it back to review when ResetVerificationOnEdit is set.
func (s *ProfileService) UpdateInstructorData(ctx context.Context, c auth.Caller, in InstructorDataInput) (*models.Profile, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionUpdate, policy.ResourceInstructor, nil); err != nil {
		return nil, err
	}
	v := validation.Violations{}
	profileUpdates := in.Profile.changes(v)
	assetUpdates := in.Asset.changes(v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	var out *models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if !current.IsInstructor() {
			return apperr.Forbidden()
		}

		if current.Asset == nil {
			asset := models.InstructorAsset{InstructorID: c.ID, VerificationStatus: models.VerificationPending}
			if err := tx.Create(&asset).Error; err != nil {
				return apperr.Internal("create asset", err)
			}
			if len(assetUpdates) > 0 {
				if err := tx.Model(&models.InstructorAsset{}).Where("id = ?", asset.ID).Updates(assetUpdates).Error; err != nil {
					return apperr.Internal("update asset", err)
				}
			}
		} else if len(assetUpdates) > 0 {
			if s.opts.ResetVerificationOnEdit {
				assetUpdates["verification_status"] = models.VerificationPending
				profileUpdates["document_verified"] = false
			}
			if err := tx.Model(&models.InstructorAsset{}).Where("id = ?", current.Asset.ID).Updates(assetUpdates).Error; err != nil {
				return apperr.Internal("update asset", err)
			}
		}

		if len(profileUpdates) > 0 {
			if err := tx.Model(&models.Profile{}).Where("id = ?", c.ID).Updates(profileUpdates).Error; err != nil {
				return apperr.Internal("update profile", err)
			}
		}
		out, err = s.load(ctx, tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PublicInstructor is the profile shown to students.
type PublicInstructor struct {
	ID               string          `json:"id"`
	FullName         string          `json:"full_name"`
	AvatarURL        *string         `json:"avatar_url,omitempty"`
	Bio              *string         `json:"bio,omitempty"`
	Phone            *string         `json:"phone,omitempty"`
	DocumentVerified bool            `json:"document_verified"`
	Vehicle          *VehicleSummary `json:"vehicle,omitempty"`
}

type VehicleSummary struct {
	Model           string                 `json:"model"`
	LicenseCategory models.LicenseCategory `json:"license_category"`
}

func toPublic(p *models.Profile) PublicInstructor {
	out := PublicInstructor{
		ID:               p.ID,
		FullName:         p.FullName,
		AvatarURL:        p.AvatarURL,
		Bio:              p.Bio,
		Phone:            p.Phone,
		DocumentVerified: p.DocumentVerified,
	}
	if p.Asset != nil {
		out.Vehicle = &VehicleSummary{Model: p.Asset.VehicleModel, LicenseCategory: p.Asset.LicenseCategory}
	}
	return out
}

// PublicInstructorProfile returns the public view of an instructor.
func (s *ProfileService) PublicInstructorProfile(ctx context.Context, id string) (*PublicInstructor, error) {
	p, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !p.IsInstructor() || (s.opts.RequireVerifiedInstructor && !approved(p)) {
		return nil, apperr.NotFound("instructor")
	}
	out := toPublic(p)
	return &out, nil
}

// approved reports whether the instructor passed document review.
func approved(p *models.Profile) bool {
	return p.DocumentVerified && p.Asset != nil && p.Asset.VerificationStatus == models.VerificationApproved
}

// SearchInstructors lists verified instructors, optionally teaching category
// and matching a name fragment.
func (s *ProfileService) SearchInstructors(ctx context.Context, category, q string, limit int) ([]PublicInstructor, error) {
	v := validation.Violations{}
	validation.OneOf("category", category, models.LicenseCategories, v)
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	query := s.db.WithContext(ctx).
		Joins("JOIN instructor_assets ON instructor_assets.instructor_id = profiles.id").
		Preload("Asset").
		Where("profiles.role = ? AND profiles.document_verified = ? AND instructor_assets.verification_status = ?",
			models.RoleInstructor, true, models.VerificationApproved)
	if category != "" {
		query = query.Where("instructor_assets.license_category IN ?", coveringCategories(models.LicenseCategory(category)))
	}
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("LOWER(profiles.full_name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var profiles []models.Profile
	if err := query.Order("profiles.full_name asc").Limit(clampLimit(limit, s.opts.AvailableSlotsLimit)).Find(&profiles).Error; err != nil {
		return nil, apperr.Internal("search instructors", err)
	}
	out := make([]PublicInstructor, 0, len(profiles))
	for i := range profiles {
		out = append(out, toPublic(&profiles[i]))
	}
	return out, nil
}

// coveringCategories returns the instructor categories able to teach want.
func coveringCategories(want models.LicenseCategory) []string {
	var out []string
	for _, c := range models.LicenseCategories {
		if models.LicenseCategory(c).Covers(want) {
			out = append(out, c)
		}
	}
	return out
}
