package services

import (
	"context"
	"time"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/internal/apperr"
	"github.com/diewo77/go-lessons/internal/models"
)

// TimelineState classifies an appointment relative to the wall clock.
type TimelineState string

const (
	TimelineCompleted TimelineState = "completed"
	TimelineCurrent   TimelineState = "current"
	TimelineNext      TimelineState = "next"
	TimelineUpcoming  TimelineState = "upcoming"
	TimelineCancelled TimelineState = "cancelled"
)

const (
	timelineMax          = 10
	timelineCompletedMax = 3
	timelineUpcomingMax  = 5
	studentTimelineSize  = 10
	instructorLookback   = 7 * 24 * time.Hour
)

type TimelineEntry struct {
	State       TimelineState      `json:"state"`
	Appointment models.Appointment `json:"appointment"`
}

const joinSlots = "JOIN slots ON slots.id = appointments.slot_id"

// StudentTimeline returns the student's ten most recent live appointments
// classified for the dashboard.
func (s *AppointmentService) StudentTimeline(ctx context.Context, c auth.Caller) ([]TimelineEntry, error) {
	if err := s.requireSide(ctx, c, models.RoleStudent); err != nil {
		return nil, err
	}
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Joins(joinSlots).
		Preload("Slot").
		Preload("Instructor").
		Where("appointments.student_id = ? AND appointments.status <> ?", c.ID, models.StatusCancelled).
		Order("slots.start_time desc").
		Limit(studentTimelineSize).
		Find(&appts).Error
	if err != nil {
		return nil, apperr.Internal("student timeline", err)
	}
	for i, j := 0, len(appts)-1; i < j; i, j = i+1, j-1 {
		appts[i], appts[j] = appts[j], appts[i]
	}
	return buildTimeline(appts, s.opts.now()), nil
}

// InstructorTimeline covers the instructor's appointments whose slot starts
// no earlier than a week ago.
func (s *AppointmentService) InstructorTimeline(ctx context.Context, c auth.Caller) ([]TimelineEntry, error) {
	if err := s.requireSide(ctx, c, models.RoleInstructor); err != nil {
		return nil, err
	}
	now := s.opts.now()
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Joins(joinSlots).
		Preload("Slot").
		Preload("Student").
		Where("appointments.instructor_id = ? AND slots.start_time >= ?", c.ID, now.Add(-instructorLookback)).
		Order("slots.start_time asc").
		Find(&appts).Error
	if err != nil {
		return nil, apperr.Internal("instructor timeline", err)
	}
	return buildTimeline(appts, now), nil
}

func classify(a models.Appointment, now time.Time) TimelineState {
	switch {
	case a.Status == models.StatusCancelled:
		return TimelineCancelled
	case a.Status == models.StatusCompleted, a.Slot.EndTime.Before(now):
		return TimelineCompleted
	case !now.Before(a.Slot.StartTime):
		return TimelineCurrent
	}
	return TimelineUpcoming
}

// buildTimeline expects appts in ascending slot start order. It keeps the
// last completed items, everything in progress, the next lesson with a few
// upcoming ones and the latest cancellation.
func buildTimeline(appts []models.Appointment, now time.Time) []TimelineEntry {
	var completed, current, upcoming, cancelled []TimelineEntry
	for _, a := range appts {
		if a.Slot == nil {
			continue
		}
		switch st := classify(a, now); st {
		case TimelineCompleted:
			completed = append(completed, TimelineEntry{State: st, Appointment: a})
		case TimelineCurrent:
			current = append(current, TimelineEntry{State: st, Appointment: a})
		case TimelineCancelled:
			cancelled = append(cancelled, TimelineEntry{State: st, Appointment: a})
		default:
			if len(upcoming) == 0 {
				st = TimelineNext
			}
			upcoming = append(upcoming, TimelineEntry{State: st, Appointment: a})
		}
	}

	out := make([]TimelineEntry, 0, timelineMax)
	out = append(out, tail(completed, timelineCompletedMax)...)
	out = append(out, current...)
	out = append(out, head(upcoming, 1+timelineUpcomingMax)...)
	out = append(out, tail(cancelled, 1)...)
	return head(out, timelineMax)
}

func head(e []TimelineEntry, n int) []TimelineEntry {
	if len(e) > n {
		return e[:n]
	}
	return e
}

func tail(e []TimelineEntry, n int) []TimelineEntry {
	if len(e) > n {
		return e[len(e)-n:]
	}
	return e
}
