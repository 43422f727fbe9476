package models

import "testing"

func TestAppointmentStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() || StatusPending.Terminal() {
		t.Errorf("unexpected terminal classification")
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("confirmed"); !ok || s != StatusConfirmed {
		t.Errorf("expected confirmed")
	}
	if _, ok := ParseStatus("CONFIRMED"); ok {
		t.Errorf("status parsing is case sensitive")
	}
}

func TestAppointment_ParticipantRole(t *testing.T) {
	a := &Appointment{StudentID: "s1", InstructorID: "i1"}
	if a.ParticipantRole("s1") != RoleStudent {
		t.Errorf("expected student")
	}
	if a.ParticipantRole("i1") != RoleInstructor {
		t.Errorf("expected instructor")
	}
	if a.ParticipantRole("x") != "" || a.ParticipantRole("") != "" {
		t.Errorf("expected no role for outsiders")
	}
}

func TestSlot_GetOwnerID(t *testing.T) {
	s := &Slot{InstructorID: "i1"}
	if s.GetOwnerID() != "i1" {
		t.Errorf("expected instructor as owner")
	}
}

func TestLicenseCategory_Covers(t *testing.T) {
	if !CategoryAB.Covers(CategoryA) || !CategoryAB.Covers(CategoryB) {
		t.Errorf("AB should cover A and B")
	}
	if CategoryA.Covers(CategoryB) || CategoryB.Covers(CategoryACC) {
		t.Errorf("unexpected coverage")
	}
	if !RoleAdmin.Valid() || Role("ROOT").Valid() {
		t.Errorf("unexpected role validity")
	}
}
