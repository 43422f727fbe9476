package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerification_ListPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, models.RoleAdmin, "Root")
	pending := f.instructor(t, "Ana", models.VerificationPending, models.CategoryB)
	f.instructor(t, "Caio", models.VerificationApproved, models.CategoryB)
	f.user(t, models.RoleInstructor, "No Asset")

	got, err := f.verification().ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, pending.ID, got[0].ID)
	require.NotNil(t, got[0].Asset)

	_, err = f.verification().ListPending(ctx, pending)
	assert.ErrorIs(t, err, apperr.Forbidden())
}

func TestVerification_Decide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.verification()
	admin := f.user(t, models.RoleAdmin, "Root")
	inst := f.instructor(t, "Ana", models.VerificationPending, models.CategoryB)

	p, err := svc.Decide(ctx, admin, inst.ID, DecisionInput{Decision: "approved"})
	require.NoError(t, err)
	assert.True(t, p.DocumentVerified)
	assertVerification(t, f, inst.ID, models.VerificationApproved, true)

	p, err = svc.Decide(ctx, admin, inst.ID, DecisionInput{Decision: "rejected"})
	require.NoError(t, err)
	assert.False(t, p.DocumentVerified)
	assertVerification(t, f, inst.ID, models.VerificationRejected, false)

	assert.Equal(t, []string{"approved", "rejected"}, f.metrics.verifications)
}

func TestVerification_DecideRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.verification()
	admin := f.user(t, models.RoleAdmin, "Root")
	inst := f.instructor(t, "Ana", models.VerificationPending, models.CategoryB)
	student := f.user(t, models.RoleStudent, "Bruno")
	bare := f.user(t, models.RoleInstructor, "No Asset")

	_, err := svc.Decide(ctx, inst, inst.ID, DecisionInput{Decision: "approved"})
	assert.ErrorIs(t, err, apperr.Forbidden())
	_, err = svc.Decide(ctx, admin, inst.ID, DecisionInput{Decision: "maybe"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Decide(ctx, admin, student.ID, DecisionInput{Decision: "approved"})
	assert.ErrorIs(t, err, apperr.NotFound(""))
	_, err = svc.Decide(ctx, admin, bare.ID, DecisionInput{Decision: "approved"})
	assert.ErrorIs(t, err, apperr.NotFound(""))
	_, err = svc.Decide(ctx, admin, "missing", DecisionInput{Decision: "approved"})
	assert.ErrorIs(t, err, apperr.NotFound(""))

	assertVerification(t, f, inst.ID, models.VerificationPending, false)
}

func TestVerification_DecideStaleReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.verification()
	admin := f.user(t, models.RoleAdmin, "Root")
	inst := f.instructor(t, "Ana", models.VerificationPending, models.CategoryB)

	queue, err := svc.ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	seen := queue[0].Asset.UpdatedAt

	// The instructor swaps the vehicle after the admin opened the queue.
	plate := "XYZ9Z99"
	require.NoError(t, f.db.Model(&models.InstructorAsset{}).
		Where("instructor_id = ?", inst.ID).
		Updates(map[string]any{"license_plate": plate, "updated_at": seen.Add(time.Minute)}).Error)

	_, err = svc.Decide(ctx, admin, inst.ID, DecisionInput{Decision: "approved", AssetUpdatedAt: &seen})
	assert.ErrorIs(t, err, apperr.Conflict(apperr.CodeStaleReview, ""))
	assertVerification(t, f, inst.ID, models.VerificationPending, false)

	queue, err = svc.ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, plate, queue[0].Asset.LicensePlate)
	fresh := queue[0].Asset.UpdatedAt
	p, err := svc.Decide(ctx, admin, inst.ID, DecisionInput{Decision: "approved", AssetUpdatedAt: &fresh})
	require.NoError(t, err)
	assert.True(t, p.DocumentVerified)
	assertVerification(t, f, inst.ID, models.VerificationApproved, true)
}

func assertVerification(t *testing.T, f *fixture, id string, status models.VerificationStatus, verified bool) {
	t.Helper()
	var p models.Profile
	require.NoError(t, f.db.Preload("Asset").First(&p, "id = ?", id).Error)
	require.NotNil(t, p.Asset)
	assert.Equal(t, status, p.Asset.VerificationStatus)
	assert.Equal(t, verified, p.DocumentVerified)
}
