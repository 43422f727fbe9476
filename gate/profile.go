package gate

import "context"

// Profile is a named set of permissions, typically one per role.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver resolves a subject to its profile.
// A nil profile with a nil error means the subject has no profile.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// ResolverFunc adapts a function to the ProfileResolver interface.
type ResolverFunc[U any] func(ctx context.Context, user U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	return f(ctx, user)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]bool
}

// NewStaticProfile creates a profile with the given permissions.
func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{
		name:        name,
		permissions: make(map[Permission]bool, len(permissions)),
	}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns all permissions in this profile.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// HasPermission checks the requested permission, honoring wildcards.
func (p *StaticProfile) HasPermission(requested Permission) bool {
	if p.permissions[requested] {
		return true
	}
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// RoleResolver maps subjects that already carry a role name to a fixed
// profile per role. Unknown roles resolve to no profile.
type RoleResolver[U any] struct {
	roleOf   func(U) string
	profiles map[string]Profile
}

// NewRoleResolver creates a resolver; roleOf extracts the role name of a subject.
func NewRoleResolver[U any](roleOf func(U) string, profiles ...Profile) *RoleResolver[U] {
	r := &RoleResolver[U]{roleOf: roleOf, profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.Name()] = p
	}
	return r
}

// Profile returns the profile registered for role, if any.
func (r *RoleResolver[U]) Profile(role string) (Profile, bool) {
	p, ok := r.profiles[role]
	return p, ok
}

func (r *RoleResolver[U]) Resolve(_ context.Context, user U) (Profile, error) {
	if p, ok := r.profiles[r.roleOf(user)]; ok {
		return p, nil
	}
	return nil, nil
}
