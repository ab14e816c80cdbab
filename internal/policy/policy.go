// Package policy implements the role- and ownership-based access rules for
// users and tasks. Decisions are computed fresh per request and never
// persisted. Every method is a pure function of its arguments; the one rule
// that depends on external state, the last-admin check, takes the live
// admin count as an argument so the caller can read it inside the same
// transaction that applies the change.
package policy

import (
	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// Denial reasons. These strings are part of the client-facing contract:
// the error taxonomy maps them to HTTP statuses by substring, so changing
// them here without updating the taxonomy misclassifies the response.
const (
	ReasonAdminOnly     = "Only administrators can access this resource"
	ReasonAssignAdmin   = "Only administrators can assign tasks"
	ReasonRoleAdmin     = "Only administrators can change user roles"
	ReasonUserForbidden = "You don't have permission to access this user"
	ReasonTaskForbidden = "You don't have permission to access this task"
	ReasonTaskModify    = "You don't have permission to modify this task"
	ReasonLastAdmin     = "Cannot remove admin role from the last administrator in the system"
	ReasonAuthRequired  = "Authentication required"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// DenialError carries a denial up the call stack. Its message is exactly
// the client-facing reason, with no wrapping prefix, so the error taxonomy
// can classify it by substring.
type DenialError struct {
	Reason string
}

// Error implements the error interface.
func (e *DenialError) Error() string {
	return e.Reason
}

// Err converts the decision into an error: nil when allowed, a
// *DenialError carrying the reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DenialError{Reason: d.Reason}
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision carrying the client-facing reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Policy evaluates the access rules. It carries no state; a single
// instance is shared by all requests.
type Policy struct{}

// New creates a Policy.
func New() *Policy {
	return &Policy{}
}

// CanListUsers allows only administrators to enumerate or read arbitrary
// users.
func (p *Policy) CanListUsers(caller *domain.AuthContext) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if !caller.IsAdmin() {
		return Deny(ReasonAdminOnly)
	}
	return Allow()
}

// CanAccessUser governs read, update, and delete of a single user profile:
// callers may touch their own profile, admins may touch anyone's.
func (p *Policy) CanAccessUser(caller *domain.AuthContext, targetID uuid.UUID) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if caller.IsAdmin() || caller.UserID() == targetID {
		return Allow()
	}
	return Deny(ReasonUserForbidden)
}

// EffectiveRoleForCreate returns the role a new user will actually get.
// Only an authenticated admin may grant the requested role; everyone else,
// including anonymous self-registration, is forced to the user role so a
// caller can never self-elevate.
func (p *Policy) EffectiveRoleForCreate(caller *domain.AuthContext, requested domain.Role) domain.Role {
	if caller.IsAdmin() && requested.Valid() {
		return requested
	}
	return domain.RoleUser
}

// CanChangeRole governs role mutation. Only admins may change roles, and
// an admin may never be demoted when they are the last one left; the
// caller must pass the admin count read inside the same transaction that
// applies the change, otherwise two concurrent demotions could both see a
// count of two and proceed.
func (p *Policy) CanChangeRole(
	caller *domain.AuthContext,
	target *domain.User,
	newRole domain.Role,
	adminCount int,
) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if !caller.IsAdmin() {
		return Deny(ReasonRoleAdmin)
	}
	if target.Role == domain.RoleAdmin && newRole != domain.RoleAdmin && adminCount <= 1 {
		return Deny(ReasonLastAdmin)
	}
	return Allow()
}

// CanCreateTask allows any authenticated caller to create a task.
func (p *Policy) CanCreateTask(caller *domain.AuthContext) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	return Allow()
}

// CanReadTask allows admins, the creator, and the assignee to read a task.
func (p *Policy) CanReadTask(caller *domain.AuthContext, task *domain.Task) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if task.VisibleTo(caller.UserID(), caller.Identity.Role) {
		return Allow()
	}
	return Deny(ReasonTaskForbidden)
}

// CanModifyTask governs update and delete: admins and the task's creator
// only. Being assigned to a task does not grant modification rights.
func (p *Policy) CanModifyTask(caller *domain.AuthContext, task *domain.Task) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if caller.IsAdmin() || task.CreatedBy == caller.UserID() {
		return Allow()
	}
	return Deny(ReasonTaskModify)
}

// CanAssignTask allows only administrators to assign tasks to users.
func (p *Policy) CanAssignTask(caller *domain.AuthContext) Decision {
	if caller == nil || !caller.IsAuthenticated {
		return Deny(ReasonAuthRequired)
	}
	if !caller.IsAdmin() {
		return Deny(ReasonAssignAdmin)
	}
	return Allow()
}
