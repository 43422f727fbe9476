package services

import (
	"context"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
	"github.com/diewo77/go-lessons/internal/policy"
)

type InstructorStats struct {
	Today         int64   `json:"today"`
	Week          int64   `json:"week"`
	MonthEarnings float64 `json:"month_earnings"`
}

// InstructorStats counts today's and this week's live lessons and sums the
// prices of lessons completed this month. Day boundaries follow the
// configured location; weeks start on Sunday.
func (s *AppointmentService) InstructorStats(ctx context.Context, c auth.Caller) (*InstructorStats, error) {
	if err := authorize(ctx, s.gate, c, gate.ActionView, policy.ResourceStats, nil); err != nil {
		return nil, err
	}

	now := s.opts.Now().In(s.opts.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.opts.Location)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location)

	var stats InstructorStats
	var err error
	if stats.Today, err = s.countLive(ctx, c.ID, today, today.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if stats.Week, err = s.countLive(ctx, c.ID, weekStart, weekStart.AddDate(0, 0, 7)); err != nil {
		return nil, err
	}

	row := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("COALESCE(SUM(slots.price), 0)").
		Joins(joinSlots).
		Where("appointments.instructor_id = ? AND appointments.status = ? AND slots.start_time >= ? AND slots.start_time < ?",
			c.ID, models.StatusCompleted, monthStart.UTC(), monthStart.AddDate(0, 1, 0).UTC()).
		Row()
	if err := row.Scan(&stats.MonthEarnings); err != nil {
		return nil, apperr.Internal("month earnings", err)
	}
	return &stats, nil
}

func (s *AppointmentService) countLive(ctx context.Context, instructorID string, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Joins(joinSlots).
		Where("appointments.instructor_id = ? AND appointments.status <> ? AND slots.start_time >= ? AND slots.start_time < ?",
			instructorID, models.StatusCancelled, from.UTC(), to.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, apperr.Internal("count appointments", err)
	}
	return n, nil
}
