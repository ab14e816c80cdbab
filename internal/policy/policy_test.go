package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/taskhive/taskhive-api/internal/domain"
)

func adminCtx(id uuid.UUID) *domain.AuthContext {
	return domain.Authenticated(id, "admin@example.com", domain.RoleAdmin)
}

func userCtx(id uuid.UUID) *domain.AuthContext {
	return domain.Authenticated(id, "user@example.com", domain.RoleUser)
}

func TestCanListUsers(t *testing.T) {
	t.Parallel()

	p := New()

	assert.True(t, p.CanListUsers(adminCtx(uuid.New())).Allowed)

	d := p.CanListUsers(userCtx(uuid.New()))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonAdminOnly, d.Reason)

	d = p.CanListUsers(domain.Anonymous())
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonAuthRequired, d.Reason)

	assert.False(t, p.CanListUsers(nil).Allowed)
}

func TestCanAccessUser(t *testing.T) {
	t.Parallel()

	p := New()
	self := uuid.New()
	other := uuid.New()

	assert.True(t, p.CanAccessUser(userCtx(self), self).Allowed, "own profile")
	assert.True(t, p.CanAccessUser(adminCtx(self), other).Allowed, "admin reaches anyone")

	d := p.CanAccessUser(userCtx(self), other)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonUserForbidden, d.Reason)

	assert.False(t, p.CanAccessUser(domain.Anonymous(), self).Allowed)
}

func TestEffectiveRoleForCreate(t *testing.T) {
	t.Parallel()

	p := New()

	tests := []struct {
		name      string
		caller    *domain.AuthContext
		requested domain.Role
		want      domain.Role
	}{
		{"anonymous requesting admin is forced to user", domain.Anonymous(), domain.RoleAdmin, domain.RoleUser},
		{"regular user cannot self-elevate", userCtx(uuid.New()), domain.RoleAdmin, domain.RoleUser},
		{"admin may grant admin", adminCtx(uuid.New()), domain.RoleAdmin, domain.RoleAdmin},
		{"admin may grant user", adminCtx(uuid.New()), domain.RoleUser, domain.RoleUser},
		{"admin with empty request defaults to user", adminCtx(uuid.New()), "", domain.RoleUser},
		{"nil caller", nil, domain.RoleAdmin, domain.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.EffectiveRoleForCreate(tt.caller, tt.requested))
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	t.Parallel()

	p := New()
	callerID := uuid.New()
	adminTarget := &domain.User{ID: callerID, Role: domain.RoleAdmin}
	otherAdmin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	regular := &domain.User{ID: uuid.New(), Role: domain.RoleUser}

	tests := []struct {
		name       string
		caller     *domain.AuthContext
		target     *domain.User
		newRole    domain.Role
		adminCount int
		wantAllow  bool
		wantReason string
	}{
		{
			name:       "non-admin denied",
			caller:     userCtx(callerID),
			target:     regular,
			newRole:    domain.RoleAdmin,
			adminCount: 2,
			wantReason: ReasonRoleAdmin,
		},
		{
			name:       "admin promotes user",
			caller:     adminCtx(callerID),
			target:     regular,
			newRole:    domain.RoleAdmin,
			adminCount: 1,
			wantAllow:  true,
		},
		{
			name:       "admin demotes another admin when two remain",
			caller:     adminCtx(callerID),
			target:     otherAdmin,
			newRole:    domain.RoleUser,
			adminCount: 2,
			wantAllow:  true,
		},
		{
			name:       "sole admin cannot demote themselves",
			caller:     adminCtx(callerID),
			target:     adminTarget,
			newRole:    domain.RoleUser,
			adminCount: 1,
			wantReason: ReasonLastAdmin,
		},
		{
			name:       "self-demotion allowed when another admin exists",
			caller:     adminCtx(callerID),
			target:     adminTarget,
			newRole:    domain.RoleUser,
			adminCount: 2,
			wantAllow:  true,
		},
		{
			name:       "keeping admin role is never blocked",
			caller:     adminCtx(callerID),
			target:     adminTarget,
			newRole:    domain.RoleAdmin,
			adminCount: 1,
			wantAllow:  true,
		},
		{
			name:       "anonymous denied",
			caller:     domain.Anonymous(),
			target:     regular,
			newRole:    domain.RoleUser,
			adminCount: 2,
			wantReason: ReasonAuthRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := p.CanChangeRole(tt.caller, tt.target, tt.newRole, tt.adminCount)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestTaskDecisions(t *testing.T) {
	t.Parallel()

	p := New()
	creator := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	task := &domain.Task{
		ID:         uuid.New(),
		Title:      "Write report",
		Status:     domain.TaskStatusPending,
		Priority:   domain.TaskPriorityMedium,
		CreatedBy:  creator,
		AssignedTo: &assignee,
	}

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		assert.True(t, p.CanCreateTask(userCtx(stranger)).Allowed)
		assert.False(t, p.CanCreateTask(domain.Anonymous()).Allowed)
	})

	t.Run("read", func(t *testing.T) {
		t.Parallel()
		assert.True(t, p.CanReadTask(userCtx(creator), task).Allowed)
		assert.True(t, p.CanReadTask(userCtx(assignee), task).Allowed)
		assert.True(t, p.CanReadTask(adminCtx(stranger), task).Allowed)

		d := p.CanReadTask(userCtx(stranger), task)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonTaskForbidden, d.Reason)
	})

	t.Run("modify", func(t *testing.T) {
		t.Parallel()
		assert.True(t, p.CanModifyTask(userCtx(creator), task).Allowed)
		assert.True(t, p.CanModifyTask(adminCtx(stranger), task).Allowed)

		d := p.CanModifyTask(userCtx(assignee), task)
		assert.False(t, d.Allowed, "assignee may read but not modify")
		assert.Equal(t, ReasonTaskModify, d.Reason)
	})

	t.Run("assign", func(t *testing.T) {
		t.Parallel()
		assert.True(t, p.CanAssignTask(adminCtx(stranger)).Allowed)

		d := p.CanAssignTask(userCtx(creator))
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonAssignAdmin, d.Reason)
	})
}
