package domain

import "github.com/google/uuid"

// Identity is the verified principal attached to a request.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// AuthContext carries the authentication state of a single request. It is
// produced once per request, never persisted, and must not be mutated after
// creation.
type AuthContext struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	Identity        *Identity `json:"identity,omitempty"`
}

// Anonymous returns the AuthContext for an unauthenticated request.
func Anonymous() *AuthContext {
	return &AuthContext{IsAuthenticated: false}
}

// Authenticated returns an AuthContext for the given verified identity.
func Authenticated(id uuid.UUID, email string, role Role) *AuthContext {
	return &AuthContext{
		IsAuthenticated: true,
		Identity:        &Identity{ID: id, Email: email, Role: role},
	}
}

// IsAdmin reports whether the context belongs to an authenticated admin.
func (c *AuthContext) IsAdmin() bool {
	return c != nil && c.IsAuthenticated && c.Identity != nil && c.Identity.Role == RoleAdmin
}

// Role returns the authenticated caller's role, or "" for anonymous
// contexts.
func (c *AuthContext) Role() Role {
	if c == nil || !c.IsAuthenticated || c.Identity == nil {
		return ""
	}
	return c.Identity.Role
}

// UserID returns the authenticated caller's ID, or uuid.Nil for anonymous
// contexts.
func (c *AuthContext) UserID() uuid.UUID {
	if c == nil || !c.IsAuthenticated || c.Identity == nil {
		return uuid.Nil
	}
	return c.Identity.ID
}
