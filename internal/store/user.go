package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user's password must
	// already be hashed by the caller.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns a page of users ordered by creation time (newest first)
	// together with the total number of users.
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)

	// Update modifies an existing user's email and name.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// UpdateRole sets the user's role and returns the updated user.
	// Returns ErrUserNotFound if the user does not exist. Callers enforcing
	// the last-admin invariant must run this together with CountAdmins
	// inside one transaction.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountAdmins returns the current number of users with the admin role.
	// The count is read live from the store, never cached.
	CountAdmins(ctx context.Context) (int, error)

	// WithTx returns a UserStore bound to the given transaction, so that
	// multiple operations can execute atomically.
	WithTx(tx *sql.Tx) UserStore
}
