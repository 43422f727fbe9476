package policy

import (
	"context"

	"github.com/diewo77/go-lessons/auth"
	"github.com/diewo77/go-lessons/gate"
	"github.com/diewo77/go-lessons/internal/models"
)

// Resource types checked by the gate.
const (
	ResourceSlot         = "slot"
	ResourceAppointment  = "appointment"
	ResourceProfile      = "profile"
	ResourceInstructor   = "instructor"
	ResourceVerification = "verification"
	ResourceDocument     = "document"
	ResourceStats        = "stats"
)

// roleProfiles are the fixed permission sets of each role. Admins do not get
// the superadmin wildcard: they verify instructors but never book or teach.
var roleProfiles = map[models.Role]*gate.StaticProfile{
	models.RoleStudent: gate.NewStaticProfile(string(models.RoleStudent),
		gate.NewPermission(ResourceAppointment, gate.ActionCreate),
		gate.NewPermission(ResourceAppointment, gate.ActionList),
		gate.NewPermission(ResourceAppointment, gate.ActionView),
		gate.NewPermission(ResourceAppointment, gate.ActionCancel),
		gate.NewPermission(ResourceProfile, gate.ActionView),
		gate.NewPermission(ResourceProfile, gate.ActionUpdate),
		gate.NewPermission(ResourceDocument, gate.ActionCreate),
	),
	models.RoleInstructor: gate.NewStaticProfile(string(models.RoleInstructor),
		gate.NewPermission(ResourceSlot, gate.WildcardAll),
		gate.NewPermission(ResourceAppointment, gate.ActionList),
		gate.NewPermission(ResourceAppointment, gate.ActionView),
		gate.NewPermission(ResourceAppointment, gate.ActionConfirm),
		gate.NewPermission(ResourceAppointment, gate.ActionComplete),
		gate.NewPermission(ResourceAppointment, gate.ActionCancel),
		gate.NewPermission(ResourceProfile, gate.ActionView),
		gate.NewPermission(ResourceProfile, gate.ActionUpdate),
		gate.NewPermission(ResourceInstructor, gate.ActionUpdate),
		gate.NewPermission(ResourceDocument, gate.ActionCreate),
		gate.NewPermission(ResourceStats, gate.ActionView),
	),
	models.RoleAdmin: gate.NewStaticProfile(string(models.RoleAdmin),
		gate.NewPermission(ResourceVerification, gate.ActionList),
		gate.NewPermission(ResourceVerification, gate.ActionDecide),
		gate.NewPermission(ResourceProfile, gate.ActionView),
		gate.NewPermission(ResourceProfile, gate.ActionUpdate),
		gate.NewPermission(ResourceDocument, gate.ActionCreate),
	),
}

// ProfileFor returns the permission profile of role, nil for unknown roles.
func ProfileFor(role models.Role) gate.Profile {
	if p, ok := roleProfiles[role]; ok {
		return p
	}
	return nil
}

func allProfiles() []gate.Profile {
	out := make([]gate.Profile, 0, len(roleProfiles))
	for _, p := range roleProfiles {
		out = append(out, p)
	}
	return out
}

// NewGate builds the request authorization gate: role permissions come from
// the caller's role, record-level checks from the registered policies.
func NewGate() *gate.Gate[auth.Caller] {
	resolver := gate.NewRoleResolver(func(c auth.Caller) string { return c.Role }, allProfiles()...)
	g := gate.New[auth.Caller](resolver)
	g.Register(ResourceSlot, NewOwnershipPolicy())
	g.Register(ResourceAppointment, NewParticipantPolicy())
	g.Register(ResourceVerification, instructorTargetPolicy())
	return g
}

// instructorTargetPolicy only lets verification decisions target instructors.
func instructorTargetPolicy() gate.Policy[auth.Caller] {
	return gate.PolicyFunc[auth.Caller](func(_ context.Context, _ auth.Caller, _ gate.Action, resource any) bool {
		p, ok := resource.(*models.Profile)
		return ok && p.IsInstructor()
	})
}
