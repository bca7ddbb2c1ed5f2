package auth

import (
	"context"
	"errors"
	"testing"
)

func TestRoleAuthorizer(t *testing.T) {
	authz := NewRoleAuthorizer(map[string][]string{
		"operator": {"*"},
		"janitor":  {ActionClearCache},
	})

	tests := []struct {
		name    string
		subject *Identity
		action  string
		allowed bool
	}{
		{"operator any action", &Identity{Principal: "a", Roles: []string{"operator"}}, ActionInvalidate, true},
		{"scoped role allowed", &Identity{Principal: "b", Roles: []string{"janitor"}}, ActionClearCache, true},
		{"scoped role denied", &Identity{Principal: "b", Roles: []string{"janitor"}}, ActionInvalidate, false},
		{"no roles", &Identity{Principal: "c"}, ActionClearCache, false},
		{"nil subject", nil, ActionClearCache, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(context.Background(), &AuthzRequest{Subject: tt.subject, Resource: "service:db", Action: tt.action})
			if tt.allowed && err != nil {
				t.Errorf("Authorize() error = %v, want nil", err)
			}
			if !tt.allowed {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("Authorize() error = %v, want ErrForbidden", err)
				}
				var azErr *AuthzError
				if !errors.As(err, &azErr) || azErr.Action != tt.action {
					t.Errorf("Authorize() error = %#v", err)
				}
			}
		})
	}
}

func TestOperatorAuthorizer_DefaultRole(t *testing.T) {
	authz := OperatorAuthorizer("")
	err := authz.Authorize(context.Background(), &AuthzRequest{
		Subject: &Identity{Principal: "ops", Roles: []string{DefaultOperatorRole}},
		Action:  ActionInvalidate,
	})
	if err != nil {
		t.Errorf("Authorize() error = %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Fatal("empty context carried an identity")
	}
	ctx = WithIdentity(ctx, &Identity{Principal: "alice"})
	if got := PrincipalFromContext(ctx); got != "alice" {
		t.Errorf("PrincipalFromContext() = %q, want alice", got)
	}
	if !AnonymousIdentity().IsAnonymous() {
		t.Error("AnonymousIdentity().IsAnonymous() = false")
	}
}
