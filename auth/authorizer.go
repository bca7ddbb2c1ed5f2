package auth

import (
	"context"
	"fmt"
	"slices"
)

// Actions guarded by the operator endpoints.
const (
	ActionInvalidate = "invalidate"
	ActionClearCache = "clear_cache"
)

// DefaultOperatorRole may perform every guarded action.
const DefaultOperatorRole = "operator"

// Authorizer determines if an identity is allowed to perform an action.
type Authorizer interface {
	// Authorize returns nil if authorized, or an error (typically
	// *AuthzError) if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the identity making the request.
	Subject *Identity

	// Resource is the target resource (e.g., "service:ollama").
	Resource string

	// Action is the requested action (e.g., "invalidate").
	Action string
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	Subject  string
	Resource string
	Action   string
	Reason   string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q resource=%q action=%q reason=%q",
		e.Subject, e.Resource, e.Action, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// RoleAuthorizer maps roles to the actions they may perform. The wildcard
// action "*" permits everything.
type RoleAuthorizer struct {
	roles map[string][]string
}

// NewRoleAuthorizer creates an authorizer from a role to actions table.
func NewRoleAuthorizer(roles map[string][]string) *RoleAuthorizer {
	table := make(map[string][]string, len(roles))
	for role, actions := range roles {
		table[role] = append([]string(nil), actions...)
	}
	return &RoleAuthorizer{roles: table}
}

// OperatorAuthorizer permits every action to role.
func OperatorAuthorizer(role string) *RoleAuthorizer {
	if role == "" {
		role = DefaultOperatorRole
	}
	return NewRoleAuthorizer(map[string][]string{role: {"*"}})
}

// Name returns "role".
func (a *RoleAuthorizer) Name() string {
	return "role"
}

// Authorize checks if any role of the subject permits the action.
func (a *RoleAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return &AuthzError{Resource: req.Resource, Action: req.Action, Reason: "no identity provided"}
	}
	for _, role := range req.Subject.Roles {
		actions := a.roles[role]
		if slices.Contains(actions, "*") || slices.Contains(actions, req.Action) {
			return nil
		}
	}
	return &AuthzError{
		Subject:  req.Subject.Principal,
		Resource: req.Resource,
		Action:   req.Action,
		Reason:   "no role permits this action",
	}
}

// AllowAllAuthorizer permits all requests.
type AllowAllAuthorizer struct{}

// Authorize always returns nil (permitted).
func (AllowAllAuthorizer) Authorize(context.Context, *AuthzRequest) error { return nil }

// Name returns "allow_all".
func (AllowAllAuthorizer) Name() string { return "allow_all" }

var (
	_ Authorizer = (*RoleAuthorizer)(nil)
	_ Authorizer = AllowAllAuthorizer{}
)
