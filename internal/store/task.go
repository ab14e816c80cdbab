package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
)

// TaskFilter restricts a task query. Nil fields are ignored. OwnerScope is
// the visibility predicate for non-admin callers: when set, only tasks
// created by or assigned to that user match, regardless of the other fields.
type TaskFilter struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
	CreatedBy  *uuid.UUID
	DueFrom    *time.Time
	DueTo      *time.Time
	OwnerScope *uuid.UUID
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the tasks matching the filter, ordered by creation time
	// descending (ties broken by ID so pagination is deterministic), plus
	// the total number of matching tasks before offset/limit are applied.
	List(ctx context.Context, filter TaskFilter, offset, limit int) ([]domain.Task, int, error)

	// Update modifies an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
