// Package tasks contains the task management use cases, most importantly
// the visibility-scoped listing: non-admin callers only ever see tasks they
// created or are assigned to, no matter what filters they request.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/store"
)

// DefaultPage and DefaultLimit apply when pagination parameters are absent.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListFilters are the caller-supplied filters for a task listing. Nil
// fields are ignored.
type ListFilters struct {
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssignedTo *uuid.UUID
	CreatedBy  *uuid.UUID
	DueFrom    *time.Time
	DueTo      *time.Time
}

// Page is one page of a task listing with pagination metadata.
type Page struct {
	Items      []domain.Task `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	HasNext    bool          `json:"has_next"`
	HasPrev    bool          `json:"has_prev"`
}

// CreateTaskParams carries the attributes for a new task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskParams carries the mutable task attributes. Nil/empty fields
// are left unchanged.
type UpdateTaskParams struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// Service implements the task management use cases.
type Service struct {
	tasks  store.TaskStore
	policy *policy.Policy
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(tasks store.TaskStore, pol *policy.Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		tasks:  tasks,
		policy: pol,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// Create stores a new task created by the caller.
func (s *Service) Create(ctx context.Context, caller *domain.AuthContext, params CreateTaskParams) (*domain.Task, error) {
	if d := s.policy.CanCreateTask(caller); !d.Allowed {
		return nil, d.Err()
	}

	task, err := domain.NewTask(params.Title, params.Description, params.Priority, caller.UserID())
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	task.DueDate = params.DueDate

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to create task", "error", err)
		return nil, fmt.Errorf("database error creating task: %w", err)
	}

	s.logger.Info("task created", "task_id", task.ID, "created_by", task.CreatedBy)
	return task, nil
}

// Get returns a single task, subject to the visibility rule.
func (s *Service) Get(ctx context.Context, caller *domain.AuthContext, id uuid.UUID) (*domain.Task, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.CanReadTask(caller, task); !d.Allowed {
		return nil, d.Err()
	}

	return task, nil
}

// List returns the page of tasks visible to the caller. Admins see the
// collection filtered only by what they asked for; everyone else has the
// ownership predicate ANDed in at the store level, so specifying another
// user's ID in assigned_to or created_by can only narrow the result, never
// broaden it. An out-of-range page is not an error: it returns empty items
// with correct metadata.
func (s *Service) List(ctx context.Context, caller *domain.AuthContext, filters ListFilters, page, limit int) (*Page, error) {
	if caller == nil || !caller.IsAuthenticated {
		return nil, policy.Deny(policy.ReasonAuthRequired).Err()
	}

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	filter := store.TaskFilter{
		Status:     filters.Status,
		Priority:   filters.Priority,
		AssignedTo: filters.AssignedTo,
		CreatedBy:  filters.CreatedBy,
		DueFrom:    filters.DueFrom,
		DueTo:      filters.DueTo,
	}
	if !caller.IsAdmin() {
		scope := caller.UserID()
		filter.OwnerScope = &scope
	}

	offset := (page - 1) * limit
	items, total, err := s.tasks.List(ctx, filter, offset, limit)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err)
		return nil, fmt.Errorf("database error listing tasks: %w", err)
	}

	totalPages := (total + limit - 1) / limit

	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Update modifies a task. Admins and the creator only.
func (s *Service) Update(ctx context.Context, caller *domain.AuthContext, id uuid.UUID, params UpdateTaskParams) (*domain.Task, error) {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if d := s.policy.CanModifyTask(caller, task); !d.Allowed {
		return nil, d.Err()
	}

	if params.Title != "" {
		task.Title = params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != "" {
		task.Status = params.Status
	}
	if params.Priority != "" {
		task.Priority = params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("task not found: %w", err)
		}
		return nil, fmt.Errorf("database error updating task: %w", err)
	}

	return task, nil
}

// Delete removes a task. Admins and the creator only.
func (s *Service) Delete(ctx context.Context, caller *domain.AuthContext, id uuid.UUID) error {
	task, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}

	if d := s.policy.CanModifyTask(caller, task); !d.Allowed {
		return d.Err()
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("task not found: %w", err)
		}
		return fmt.Errorf("database error deleting task: %w", err)
	}

	s.logger.Info("task deleted", "task_id", id, "deleted_by", caller.UserID())
	return nil
}

// Assign sets the task's assignee. Admin only.
func (s *Service) Assign(ctx context.Context, caller *domain.AuthContext, id, assigneeID uuid.UUID) (*domain.Task, error) {
	if d := s.policy.CanAssignTask(caller); !d.Allowed {
		return nil, d.Err()
	}

	task, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	task.AssignedTo = &assigneeID
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("database error assigning task: %w", err)
	}

	s.logger.Info("task assigned",
		"task_id", id,
		"assigned_to", assigneeID,
		"assigned_by", caller.UserID())

	return task, nil
}

func (s *Service) loadTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("task not found: %w", err)
		}
		return nil, fmt.Errorf("database error loading task: %w", err)
	}
	return task, nil
}
