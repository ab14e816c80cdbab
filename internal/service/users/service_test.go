package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/mocks"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/store"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type recordingInvalidator struct {
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(id uuid.UUID) {
	r.ids = append(r.ids, id)
}

func newService(userStore *mocks.MockUserStore) *Service {
	return NewService(userStore, policy.New(), fakeHasher{}, nil, &mocks.MockTransactor{}, nil)
}

func adminCtx() *domain.AuthContext {
	return domain.Authenticated(uuid.New(), "admin@example.com", domain.RoleAdmin)
}

func userCtx(id uuid.UUID) *domain.AuthContext {
	return domain.Authenticated(id, "user@example.com", domain.RoleUser)
}

func TestCreateRoleAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		caller    *domain.AuthContext
		requested domain.Role
		wantRole  domain.Role
	}{
		{
			name:      "anonymous registration is always a plain user",
			caller:    domain.Anonymous(),
			requested: domain.RoleAdmin,
			wantRole:  domain.RoleUser,
		},
		{
			name:      "non-admin cannot grant admin",
			caller:    userCtx(uuid.New()),
			requested: domain.RoleAdmin,
			wantRole:  domain.RoleUser,
		},
		{
			name:      "admin grants requested role",
			caller:    adminCtx(),
			requested: domain.RoleAdmin,
			wantRole:  domain.RoleAdmin,
		},
		{
			name:      "admin with no requested role defaults to user",
			caller:    adminCtx(),
			requested: "",
			wantRole:  domain.RoleUser,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newService(&mocks.MockUserStore{})

			user, err := svc.Create(context.Background(), tc.caller, CreateUserParams{
				Email:         "new@example.com",
				Name:          "New User",
				Password:      "correct-horse-battery",
				RequestedRole: tc.requested,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantRole, user.Role)
			assert.Empty(t, user.Password, "plaintext must not leave the service")
			assert.Equal(t, "hashed:correct-horse-battery", user.HashedPassword)
		})
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := &mocks.MockUserStore{
		CreateFn: func(ctx context.Context, user *domain.User) error {
			return store.ErrEmailExists
		},
	}
	svc := newService(userStore)

	_, err := svc.Create(context.Background(), domain.Anonymous(), CreateUserParams{
		Email:    "taken@example.com",
		Name:     "Dup",
		Password: "correct-horse-battery",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user with this email already exists")
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newService(&mocks.MockUserStore{})

	_, err := svc.Create(context.Background(), domain.Anonymous(), CreateUserParams{
		Email:    "short@example.com",
		Name:     "Short",
		Password: "2short",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}

func TestGetSelfOrAdmin(t *testing.T) {
	t.Parallel()

	selfID := uuid.New()
	target := &domain.User{
		ID:    selfID,
		Email: "self@example.com",
		Name:  "Self",
		Role:  domain.RoleUser,
	}
	userStore := &mocks.MockUserStore{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id == selfID {
				return target, nil
			}
			return nil, store.ErrUserNotFound
		},
	}
	svc := newService(userStore)

	got, err := svc.Get(context.Background(), userCtx(selfID), selfID)
	require.NoError(t, err)
	assert.Equal(t, selfID, got.ID)

	got, err = svc.Get(context.Background(), adminCtx(), selfID)
	require.NoError(t, err)
	assert.Equal(t, selfID, got.ID)

	_, err = svc.Get(context.Background(), userCtx(uuid.New()), selfID)
	var denial *policy.DenialError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, policy.ReasonUserForbidden, denial.Reason)
}

func TestListAdminOnly(t *testing.T) {
	t.Parallel()

	userStore := &mocks.MockUserStore{
		ListFn: func(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
			return []domain.User{{ID: uuid.New()}}, 1, nil
		},
	}
	svc := newService(userStore)

	items, total, err := svc.List(context.Background(), adminCtx(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)

	_, _, err = svc.List(context.Background(), userCtx(uuid.New()), 1, 10)
	var denial *policy.DenialError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, policy.ReasonAdminOnly, denial.Reason)
}

func TestUpdateInvalidatesProfile(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	userStore := &mocks.MockUserStore{
		GetByIDFn: func(ctx context.Context, gotID uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: gotID, Email: "old@example.com", Name: "Old", Role: domain.RoleUser}, nil
		},
	}
	inv := &recordingInvalidator{}
	svc := newService(userStore)
	svc.invalidator = inv

	updated, err := svc.Update(context.Background(), userCtx(id), id, UpdateUserParams{Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "old@example.com", updated.Email)
	assert.Equal(t, []uuid.UUID{id}, inv.ids)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	t.Run("self delete allowed", func(t *testing.T) {
		t.Parallel()

		svc := newService(&mocks.MockUserStore{})
		require.NoError(t, svc.Delete(context.Background(), userCtx(id), id))
	})

	t.Run("stranger denied", func(t *testing.T) {
		t.Parallel()

		svc := newService(&mocks.MockUserStore{})
		err := svc.Delete(context.Background(), userCtx(uuid.New()), id)
		var denial *policy.DenialError
		require.ErrorAs(t, err, &denial)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		t.Parallel()

		svc := newService(&mocks.MockUserStore{
			DeleteFn: func(ctx context.Context, gotID uuid.UUID) error {
				return store.ErrUserNotFound
			},
		})
		err := svc.Delete(context.Background(), adminCtx(), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestChangeRole(t *testing.T) {
	t.Parallel()

	targetID := uuid.New()

	newStore := func(targetRole domain.Role, adminCount int) *mocks.MockUserStore {
		return &mocks.MockUserStore{
			GetByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return &domain.User{ID: id, Email: "t@example.com", Name: "T", Role: targetRole}, nil
			},
			CountAdminsFn: func(ctx context.Context) (int, error) {
				return adminCount, nil
			},
			UpdateRoleFn: func(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
				return &domain.User{ID: id, Email: "t@example.com", Name: "T", Role: role}, nil
			},
		}
	}

	t.Run("non-admin denied", func(t *testing.T) {
		t.Parallel()

		svc := newService(newStore(domain.RoleUser, 2))
		_, err := svc.ChangeRole(context.Background(), userCtx(uuid.New()), targetID, domain.RoleAdmin)
		var denial *policy.DenialError
		require.ErrorAs(t, err, &denial)
		assert.Equal(t, policy.ReasonRoleAdmin, denial.Reason)
	})

	t.Run("invalid role rejected before any store access", func(t *testing.T) {
		t.Parallel()

		userStore := newStore(domain.RoleUser, 2)
		svc := newService(userStore)
		_, err := svc.ChangeRole(context.Background(), adminCtx(), targetID, "superuser")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
		assert.Zero(t, userStore.GetByIDCalls)
	})

	t.Run("promotion allowed", func(t *testing.T) {
		t.Parallel()

		svc := newService(newStore(domain.RoleUser, 1))
		updated, err := svc.ChangeRole(context.Background(), adminCtx(), targetID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, updated.Role)
	})

	t.Run("demotion allowed when another admin remains", func(t *testing.T) {
		t.Parallel()

		svc := newService(newStore(domain.RoleAdmin, 2))
		updated, err := svc.ChangeRole(context.Background(), adminCtx(), targetID, domain.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, updated.Role)
	})

	t.Run("last admin cannot be demoted", func(t *testing.T) {
		t.Parallel()

		svc := newService(newStore(domain.RoleAdmin, 1))

		// Repeating the request changes nothing: every attempt sees the
		// same count and is denied the same way.
		for i := 0; i < 2; i++ {
			_, err := svc.ChangeRole(context.Background(), adminCtx(), targetID, domain.RoleUser)
			var denial *policy.DenialError
			require.ErrorAs(t, err, &denial)
			assert.Equal(t, policy.ReasonLastAdmin, denial.Reason)
		}
	})

	t.Run("invalidates cached identity on success", func(t *testing.T) {
		t.Parallel()

		inv := &recordingInvalidator{}
		svc := newService(newStore(domain.RoleUser, 1))
		svc.invalidator = inv

		_, err := svc.ChangeRole(context.Background(), adminCtx(), targetID, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{targetID}, inv.ids)
	})
}
