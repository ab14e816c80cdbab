package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/tasks"
	"github.com/taskhive/taskhive-api/internal/validation"
)

// TaskHandler wires the task endpoints into the pipeline.
type TaskHandler struct {
	tasks    *tasks.Service
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(svc *tasks.Service, pipeline *Pipeline, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{tasks: svc, pipeline: pipeline, logger: logger}
}

// Register mounts the task routes on the router.
func (h *TaskHandler) Register(r chi.Router) {
	r.Handle("/tasks", h.pipeline.Mux(h.createEndpoint(), h.listEndpoint()))
	r.Handle("/tasks/{id}", h.pipeline.Mux(h.getEndpoint(), h.updateEndpoint(), h.deleteEndpoint()))
	r.Handle("/tasks/{id}/assign", h.pipeline.Build(h.assignEndpoint()))
}

func statusRule(required bool) validation.Rule {
	return validation.Rule{
		Field: "status", Required: required, Type: validation.TypeString,
		Custom:  validation.OneOf("pending", "in_progress", "completed", "cancelled"),
		Message: "status must be one of pending, in_progress, completed, cancelled",
	}
}

func priorityRule() validation.Rule {
	return validation.Rule{
		Field: "priority", Type: validation.TypeString,
		Custom:  validation.OneOf("low", "medium", "high", "urgent"),
		Message: "priority must be one of low, medium, high, urgent",
	}
}

func (h *TaskHandler) createEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPost},
		RequireAuth: true,
		Rules: []validation.Rule{
			{Field: "title", Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 200},
			{Field: "description", Type: validation.TypeString, MaxLength: 2000},
			priorityRule(),
			{Field: "due_date", Type: validation.TypeString, Custom: isRFC3339,
				Message: "due_date must be an RFC3339 timestamp"},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			task, err := h.tasks.Create(rc.Request.Context(), rc.Auth, tasks.CreateTaskParams{
				Title:       stringFromInput(rc.Input, "title"),
				Description: stringFromInput(rc.Input, "description"),
				Priority:    domain.TaskPriority(stringFromInput(rc.Input, "priority")),
				DueDate:     timeFromInput(rc.Input, "due_date"),
			})
			if err != nil {
				return nil, err
			}
			return &HandlerResult{
				Status:  http.StatusCreated,
				Data:    task,
				Message: "Task created successfully",
			}, nil
		},
	}
}

// listEndpoint returns the caller's visible slice of the collection. Role
// scoping happens in the service; the endpoint only parses filters.
func (h *TaskHandler) listEndpoint() Endpoint {
	rules := append(paginationRules(),
		statusRule(false),
		priorityRule(),
		validation.Rule{Field: "assigned_to", Type: validation.TypeUUID,
			Message: "assigned_to must be a valid UUID"},
		validation.Rule{Field: "created_by", Type: validation.TypeUUID,
			Message: "created_by must be a valid UUID"},
		validation.Rule{Field: "due_from", Type: validation.TypeString, Custom: isRFC3339,
			Message: "due_from must be an RFC3339 timestamp"},
		validation.Rule{Field: "due_to", Type: validation.TypeString, Custom: isRFC3339,
			Message: "due_to must be an RFC3339 timestamp"},
	)

	return Endpoint{
		Methods:     []string{http.MethodGet},
		RequireAuth: true,
		Rules:       rules,
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			filters := tasks.ListFilters{
				DueFrom: timeFromInput(rc.Input, "due_from"),
				DueTo:   timeFromInput(rc.Input, "due_to"),
			}
			if s := stringFromInput(rc.Input, "status"); s != "" {
				status := domain.TaskStatus(s)
				filters.Status = &status
			}
			if s := stringFromInput(rc.Input, "priority"); s != "" {
				priority := domain.TaskPriority(s)
				filters.Priority = &priority
			}
			if id, ok := uuidFromInput(rc.Input, "assigned_to"); ok {
				filters.AssignedTo = &id
			}
			if id, ok := uuidFromInput(rc.Input, "created_by"); ok {
				filters.CreatedBy = &id
			}

			page, err := h.tasks.List(rc.Request.Context(), rc.Auth, filters,
				intFromInput(rc.Input, "page", tasks.DefaultPage),
				intFromInput(rc.Input, "limit", tasks.DefaultLimit))
			if err != nil {
				return nil, err
			}
			return &HandlerResult{
				Data: page.Items,
				Meta: newPageMeta(page.Total, page.Page, page.Limit),
			}, nil
		},
	}
}

func (h *TaskHandler) getEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodGet},
		RequireAuth: true,
		Rules:       []validation.Rule{idRule()},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			task, err := h.tasks.Get(rc.Request.Context(), rc.Auth, id)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: task}, nil
		},
	}
}

func (h *TaskHandler) updateEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPut},
		RequireAuth: true,
		Rules: []validation.Rule{
			idRule(),
			{Field: "title", Type: validation.TypeString, MinLength: 1, MaxLength: 200},
			{Field: "description", Type: validation.TypeString, MaxLength: 2000},
			statusRule(false),
			priorityRule(),
			{Field: "due_date", Type: validation.TypeString, Custom: isRFC3339,
				Message: "due_date must be an RFC3339 timestamp"},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")

			params := tasks.UpdateTaskParams{
				Title:    stringFromInput(rc.Input, "title"),
				Status:   domain.TaskStatus(stringFromInput(rc.Input, "status")),
				Priority: domain.TaskPriority(stringFromInput(rc.Input, "priority")),
				DueDate:  timeFromInput(rc.Input, "due_date"),
			}
			if desc, ok := rc.Input["description"].(string); ok {
				params.Description = &desc
			}

			task, err := h.tasks.Update(rc.Request.Context(), rc.Auth, id, params)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: task, Message: "Task updated successfully"}, nil
		},
	}
}

func (h *TaskHandler) deleteEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodDelete},
		RequireAuth: true,
		Rules:       []validation.Rule{idRule()},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			if err := h.tasks.Delete(rc.Request.Context(), rc.Auth, id); err != nil {
				return nil, err
			}
			return &HandlerResult{Message: "Task deleted successfully"}, nil
		},
	}
}

func (h *TaskHandler) assignEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPatch},
		RequireAuth: true,
		Rules: []validation.Rule{
			idRule(),
			{Field: "assigned_to", Required: true, Type: validation.TypeUUID,
				Message: "assigned_to must be a valid UUID"},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			assigneeID, _ := uuidFromInput(rc.Input, "assigned_to")

			task, err := h.tasks.Assign(rc.Request.Context(), rc.Auth, id, assigneeID)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: task, Message: "Task assigned successfully"}, nil
		},
	}
}
