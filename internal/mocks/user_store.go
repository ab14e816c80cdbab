package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	CreateFn      func(ctx context.Context, user *domain.User) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	ListFn        func(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	UpdateFn      func(ctx context.Context, user *domain.User) error
	UpdateRoleFn  func(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	DeleteFn      func(ctx context.Context, id uuid.UUID) error
	CountAdminsFn func(ctx context.Context) (int, error)

	// GetByIDCalls counts GetByID invocations, useful for cache assertions.
	GetByIDCalls int
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.GetByIDCalls++
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore.
func (m *MockUserStore) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

// Update implements store.UserStore.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

// UpdateRole implements store.UserStore.
func (m *MockUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	if m.UpdateRoleFn != nil {
		return m.UpdateRoleFn(ctx, id, role)
	}
	return nil, store.ErrUserNotFound
}

// Delete implements store.UserStore.
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// CountAdmins implements store.UserStore.
func (m *MockUserStore) CountAdmins(ctx context.Context) (int, error) {
	if m.CountAdminsFn != nil {
		return m.CountAdminsFn(ctx)
	}
	return 1, nil
}

// WithTx implements store.UserStore. The mock has no transaction state, so
// it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
