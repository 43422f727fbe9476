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

func timelineAppt(id string, status models.AppointmentStatus, start time.Time) models.Appointment {
	return models.Appointment{
		ID:     id,
		Status: status,
		Slot:   &models.Slot{StartTime: start, EndTime: start.Add(time.Hour)},
	}
}

func states(entries []TimelineEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Appointment.ID + ":" + string(e.State)
	}
	return out
}

func TestBuildTimeline_Classification(t *testing.T) {
	now := testNow
	appts := []models.Appointment{
		timelineAppt("ended", models.StatusConfirmed, now.Add(-3*time.Hour)),
		timelineAppt("done", models.StatusCompleted, now.Add(-2*time.Hour)),
		timelineAppt("dropped", models.StatusCancelled, now.Add(-90*time.Minute)),
		timelineAppt("live", models.StatusConfirmed, now.Add(-30*time.Minute)),
		timelineAppt("soon", models.StatusPending, now.Add(2*time.Hour)),
		timelineAppt("later", models.StatusConfirmed, now.Add(5*time.Hour)),
	}

	got := buildTimeline(appts, now)
	assert.Equal(t, []string{
		"ended:completed",
		"done:completed",
		"live:current",
		"soon:next",
		"later:upcoming",
		"dropped:cancelled",
	}, states(got))
}

func TestBuildTimeline_Trims(t *testing.T) {
	now := testNow
	var appts []models.Appointment
	for i := 0; i < 5; i++ {
		appts = append(appts, timelineAppt("past"+string(rune('a'+i)), models.StatusCompleted, now.Add(-time.Duration(10-i)*time.Hour)))
	}
	for i := 0; i < 2; i++ {
		appts = append(appts, timelineAppt("cancel"+string(rune('a'+i)), models.StatusCancelled, now.Add(-time.Duration(4-i)*time.Hour)))
	}
	for i := 0; i < 8; i++ {
		appts = append(appts, timelineAppt("future"+string(rune('a'+i)), models.StatusPending, now.Add(time.Duration(i+1)*time.Hour)))
	}

	got := buildTimeline(appts, now)
	require.Len(t, got, 10)
	assert.Equal(t, "pastc:completed", states(got)[0], "keeps the last three completed")
	assert.Equal(t, "futurea:next", states(got)[3])
	assert.Equal(t, "futuref:upcoming", states(got)[8])
	assert.Equal(t, "cancelb:cancelled", states(got)[9], "keeps the latest cancellation")
}

func TestStudentTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.appointments()
	inst := f.instructor(t, "Ana", models.VerificationApproved, models.CategoryB)
	student := f.user(t, models.RoleStudent, "Bruno")

	var ids []string
	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		slot := f.slot(t, inst.ID, testNow.Add(offset))
		appt, err := svc.Create(ctx, student, CreateAppointmentInput{SlotID: slot.ID, InstructorID: inst.ID})
		require.NoError(t, err)
		ids = append(ids, appt.ID)
	}
	_, err := svc.UpdateStatus(ctx, student, ids[0], "cancelled")
	require.NoError(t, err)

	got, err := svc.StudentTimeline(ctx, student)
	require.NoError(t, err)
	require.Len(t, got, 2, "cancelled lessons are not shown to students")
	assert.Equal(t, ids[1], got[0].Appointment.ID)
	assert.Equal(t, TimelineNext, got[0].State)
	assert.Equal(t, TimelineUpcoming, got[1].State)
	require.NotNil(t, got[0].Appointment.Instructor)

	_, err = svc.StudentTimeline(ctx, inst)
	assert.ErrorIs(t, err, apperr.Forbidden())
}

func TestInstructorTimeline_LooksBackOneWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.instructor(t, "Ana", models.VerificationApproved, models.CategoryB)
	student := f.user(t, models.RoleStudent, "Bruno")

	for _, start := range []time.Time{testNow.Add(-8 * 24 * time.Hour), testNow.Add(-2 * 24 * time.Hour), testNow.Add(24 * time.Hour)} {
		slot := f.slot(t, inst.ID, start)
		slot.IsBooked = true
		require.NoError(t, f.db.Save(slot).Error)
		require.NoError(t, f.db.Create(&models.Appointment{SlotID: slot.ID, StudentID: student.ID, InstructorID: inst.ID, Status: models.StatusConfirmed}).Error)
	}

	got, err := f.appointments().InstructorTimeline(ctx, inst)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TimelineCompleted, got[0].State)
	assert.Equal(t, TimelineNext, got[1].State)
	require.NotNil(t, got[1].Appointment.Student)
	assert.Equal(t, "Bruno", got[1].Appointment.Student.FullName)
}

func TestInstructorStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inst := f.instructor(t, "Ana", models.VerificationApproved, models.CategoryB)
	student := f.user(t, models.RoleStudent, "Bruno")

	book := func(start time.Time, status models.AppointmentStatus, price float64) {
		slot := f.slot(t, inst.ID, start)
		require.NoError(t, f.db.Model(slot).Updates(map[string]any{"price": price, "is_booked": status != models.StatusCancelled}).Error)
		require.NoError(t, f.db.Create(&models.Appointment{SlotID: slot.ID, StudentID: student.ID, InstructorID: inst.ID, Status: status}).Error)
	}
	// Two live lessons today plus one cancelled, one on Monday and one on
	// Saturday of the same week, one completed last month.
	book(testNow.Add(-3*time.Hour), models.StatusCompleted, 120)
	book(testNow.Add(4*time.Hour), models.StatusConfirmed, 100)
	book(testNow.Add(5*time.Hour), models.StatusCancelled, 999)
	book(testNow.Add(-2*24*time.Hour), models.StatusCompleted, 80)
	book(testNow.Add(3*24*time.Hour), models.StatusPending, 50)
	book(testNow.Add(-20*24*time.Hour), models.StatusCompleted, 70)

	stats, err := f.appointments().InstructorStats(ctx, inst)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Today)
	assert.EqualValues(t, 4, stats.Week)
	assert.InDelta(t, 200, stats.MonthEarnings, 0.001)

	_, err = f.appointments().InstructorStats(ctx, student)
	assert.ErrorIs(t, err, apperr.Forbidden())
}
