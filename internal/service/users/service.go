// Package users contains the user management use cases: registration with
// role enforcement, profile reads and updates, and the transactional role
// change guarded by the last-admin invariant.
package users

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// ProfileInvalidator drops cached identity data after a mutation. The
// identity resolver implements it.
type ProfileInvalidator interface {
	Invalidate(userID uuid.UUID)
}

// CreateUserParams carries the attributes for a new user. RequestedRole is
// honored only for admin callers; everyone else gets RoleUser.
type CreateUserParams struct {
	Email         string
	Name          string
	Password      string
	RequestedRole domain.Role
}

// UpdateUserParams carries the mutable profile attributes. Empty fields
// are left unchanged.
type UpdateUserParams struct {
	Email string
	Name  string
}

// Service implements the user management use cases.
type Service struct {
	users       store.UserStore
	policy      *policy.Policy
	hasher      auth.PasswordHasher
	invalidator ProfileInvalidator
	tx          store.Transactor
	logger      *slog.Logger
}

// NewService creates a Service. invalidator may be nil when no identity
// cache is in play (tests).
func NewService(
	users store.UserStore,
	pol *policy.Policy,
	hasher auth.PasswordHasher,
	invalidator ProfileInvalidator,
	tx store.Transactor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		users:       users,
		policy:      pol,
		hasher:      hasher,
		invalidator: invalidator,
		tx:          tx,
		logger:      logger.With(slog.String("component", "user_service")),
	}
}

// Create registers a new user. The effective role is decided by policy:
// anonymous and non-admin callers always produce a plain user regardless of
// what the request asked for.
func (s *Service) Create(ctx context.Context, caller *domain.AuthContext, params CreateUserParams) (*domain.User, error) {
	role := s.policy.EffectiveRoleForCreate(caller, params.RequestedRole)

	user, err := domain.NewUser(params.Email, params.Name, params.Password, role)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, fmt.Errorf("user with this email already exists: %w", err)
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, fmt.Errorf("database error creating user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"role", user.Role)

	return user, nil
}

// Get returns a single user, subject to the self-or-admin rule.
func (s *Service) Get(ctx context.Context, caller *domain.AuthContext, id uuid.UUID) (*domain.User, error) {
	if d := s.policy.CanAccessUser(caller, id); !d.Allowed {
		return nil, d.Err()
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("database error loading user: %w", err)
	}

	return user, nil
}

// List returns a page of users. Admin only.
func (s *Service) List(ctx context.Context, caller *domain.AuthContext, page, limit int) ([]domain.User, int, error) {
	if d := s.policy.CanListUsers(caller); !d.Allowed {
		return nil, 0, d.Err()
	}

	offset := (page - 1) * limit
	items, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, 0, fmt.Errorf("database error listing users: %w", err)
	}

	return items, total, nil
}

// Update modifies a user's profile fields, subject to the self-or-admin
// rule. Role changes go through ChangeRole, never here.
func (s *Service) Update(ctx context.Context, caller *domain.AuthContext, id uuid.UUID, params UpdateUserParams) (*domain.User, error) {
	if d := s.policy.CanAccessUser(caller, id); !d.Allowed {
		return nil, d.Err()
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("database error loading user: %w", err)
	}

	if params.Email != "" {
		user.Email = params.Email
	}
	if params.Name != "" {
		user.Name = params.Name
	}

	if err := s.users.Update(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, fmt.Errorf("user with this email already exists: %w", err)
		}
		return nil, fmt.Errorf("database error updating user: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(id)
	}

	return user, nil
}

// Delete removes a user, subject to the self-or-admin rule.
func (s *Service) Delete(ctx context.Context, caller *domain.AuthContext, id uuid.UUID) error {
	if d := s.policy.CanAccessUser(caller, id); !d.Allowed {
		return d.Err()
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("user not found: %w", err)
		}
		return fmt.Errorf("database error deleting user: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(id)
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", caller.UserID())
	return nil
}

// ChangeRole sets a user's role. The admin count and the update run inside
// one transaction so two concurrent demotions cannot both observe a count
// of two and leave the system with no administrators.
func (s *Service) ChangeRole(ctx context.Context, caller *domain.AuthContext, id uuid.UUID, newRole domain.Role) (*domain.User, error) {
	if !newRole.Valid() {
		return nil, fmt.Errorf("validation failed: %w", domain.ErrInvalidRole)
	}

	var updated *domain.User
	err := s.tx.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		target, err := txUsers.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return fmt.Errorf("user not found: %w", err)
			}
			return fmt.Errorf("database error loading user: %w", err)
		}

		adminCount, err := txUsers.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("database error counting admins: %w", err)
		}

		if d := s.policy.CanChangeRole(caller, target, newRole, adminCount); !d.Allowed {
			return d.Err()
		}

		updated, err = txUsers.UpdateRole(ctx, id, newRole)
		if err != nil {
			return fmt.Errorf("database error updating role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(id)
	}

	s.logger.Info("user role changed",
		"user_id", id,
		"new_role", newRole,
		"changed_by", caller.UserID())

	return updated, nil
}
