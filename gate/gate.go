// Package gate provides role-profile and resource-policy authorization.
//
// A Gate first resolves the subject to a Profile and checks that the profile
// grants "resource:action"; when a resource is supplied and a Policy is
// registered for its type, the policy decides on the concrete record
// (ownership, participation). The package knows nothing about domain models.
//
// The subject type is generic so the same gate works for a bare user ID or a
// request-scoped caller struct:
//   - Gate[string] keyed by user ID
//   - Gate[auth.Caller] keyed by the authenticated caller
package gate

import "context"

// Gate combines profile permissions with resource-specific policies.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate that resolves subjects through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register adds a policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when user may perform action on resourceType.
//  1. The zero subject is always denied.
//  2. The subject's profile must grant resource:action.
//  3. If resource is non-nil and a policy is registered, the policy must allow it.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}

	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}

	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok {
			if !policy.Can(ctx, user, action, resource) {
				return ErrUnauthorized
			}
		}
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks only the profile permission, without any resource policy.
// Route middleware uses it before the target record is loaded.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
