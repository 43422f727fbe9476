package policy

import (
	"context"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/models"
)

// Ownable is implemented by records that belong to a single profile.
type Ownable interface {
	GetOwnerID() string
}

// OwnershipPolicy allows access only to the owner of the resource.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks ownership. A nil resource (list/create) is left to the profile
// permission; resources that are not Ownable are denied.
func (p *OwnershipPolicy) Can(_ context.Context, caller auth.Caller, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetOwnerID() == caller.ID
}

// Participant is implemented by records shared between two parties.
type Participant interface {
	ParticipantRole(userID string) models.Role
}

// ParticipantPolicy lets either party view or cancel, and reserves
// confirm and complete for the instructor side.
type ParticipantPolicy struct{}

func NewParticipantPolicy() *ParticipantPolicy {
	return &ParticipantPolicy{}
}

func (p *ParticipantPolicy) Can(_ context.Context, caller auth.Caller, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	part, ok := resource.(Participant)
	if !ok {
		return false
	}
	side := part.ParticipantRole(caller.ID)
	if side == "" || string(side) != caller.Role {
		return false
	}
	switch action {
	case gate.ActionView, gate.ActionCancel:
		return true
	case gate.ActionConfirm, gate.ActionComplete:
		return side == models.RoleInstructor
	}
	return false
}
