package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-lessons/gate"
)

func TestStaticProfile_HasPermission(t *testing.T) {
	p := gate.NewStaticProfile("INSTRUCTOR",
		"slot:*",
		gate.NewPermission("appointment", gate.ActionConfirm),
	)
	if p.Name() != "INSTRUCTOR" {
		t.Errorf("expected name INSTRUCTOR, got %s", p.Name())
	}
	if !p.HasPermission("slot:delete") {
		t.Error("wildcard should grant slot:delete")
	}
	if !p.HasPermission("appointment:confirm") {
		t.Error("expected appointment:confirm")
	}
	if p.HasPermission("appointment:create") {
		t.Error("did not expect appointment:create")
	}
	if len(p.Permissions()) != 2 {
		t.Errorf("expected 2 permissions, got %d", len(p.Permissions()))
	}
}

func TestRoleResolver(t *testing.T) {
	r := gate.NewRoleResolver(func(role string) string { return role },
		gate.NewStaticProfile("STUDENT"),
	)
	p, err := r.Resolve(context.Background(), "STUDENT")
	if err != nil || p == nil || p.Name() != "STUDENT" {
		t.Fatalf("expected STUDENT profile, got %v, %v", p, err)
	}
	p, err = r.Resolve(context.Background(), "GHOST")
	if err != nil || p != nil {
		t.Fatalf("expected no profile for unknown role, got %v, %v", p, err)
	}
	if _, ok := r.Profile("STUDENT"); !ok {
		t.Error("expected Profile lookup to succeed")
	}
}
