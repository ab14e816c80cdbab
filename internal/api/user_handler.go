package api

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/service/users"
	"github.com/taskhive/taskhive-api/internal/validation"
)

// pageMeta is the pagination block attached to list responses.
type pageMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func newPageMeta(total, page, limit int) pageMeta {
	totalPages := (total + limit - 1) / limit
	return pageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// paginationRules validate page and limit without clamping: a caller asking
// for page 0 or limit 500 gets a 400, not a silently adjusted query.
func paginationRules() []validation.Rule {
	return []validation.Rule{
		{Field: "page", Type: validation.TypeNumber, Custom: validation.IntInRange(1, math.MaxInt32),
			Message: "page must be a positive integer"},
		{Field: "limit", Type: validation.TypeNumber, Custom: validation.IntInRange(1, 100),
			Message: "limit must be between 1 and 100"},
	}
}

func idRule() validation.Rule {
	return validation.Rule{Field: "id", Required: true, Type: validation.TypeUUID,
		Message: "id must be a valid UUID"}
}

// UserHandler wires the user management endpoints into the pipeline.
type UserHandler struct {
	users    *users.Service
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *users.Service, pipeline *Pipeline, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{users: svc, pipeline: pipeline, logger: logger}
}

// Register mounts the user routes on the router.
func (h *UserHandler) Register(r chi.Router) {
	r.Handle("/users", h.pipeline.Mux(h.createEndpoint(), h.listEndpoint()))
	r.Handle("/users/{id}", h.pipeline.Mux(h.getEndpoint(), h.updateEndpoint(), h.deleteEndpoint()))
	r.Handle("/users/{id}/role", h.pipeline.Build(h.changeRoleEndpoint()))
}

// createEndpoint is the public registration endpoint. Authentication is
// optional: anonymous callers and plain users always produce a plain user,
// only admins can grant a requested role.
func (h *UserHandler) createEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPost},
		RequireAuth: false,
		Rules: []validation.Rule{
			{Field: "email", Required: true, Type: validation.TypeEmail, MaxLength: 255},
			{Field: "name", Required: true, Type: validation.TypeString, MinLength: 1, MaxLength: 100},
			{Field: "password", Required: true, Type: validation.TypeString, MinLength: 8, MaxLength: 72},
			{Field: "role", Type: validation.TypeString, Custom: validation.OneOf("admin", "user"),
				Message: "role must be either admin or user"},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			user, err := h.users.Create(rc.Request.Context(), rc.Auth, users.CreateUserParams{
				Email:         stringFromInput(rc.Input, "email"),
				Name:          stringFromInput(rc.Input, "name"),
				Password:      stringFromInput(rc.Input, "password"),
				RequestedRole: domain.Role(stringFromInput(rc.Input, "role")),
			})
			if err != nil {
				return nil, err
			}
			return &HandlerResult{
				Status:  http.StatusCreated,
				Data:    user,
				Message: "User created successfully",
			}, nil
		},
	}
}

func (h *UserHandler) listEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodGet},
		RequireAuth: true,
		Roles:       []domain.Role{domain.RoleAdmin},
		Rules:       paginationRules(),
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			page := intFromInput(rc.Input, "page", 1)
			limit := intFromInput(rc.Input, "limit", 10)

			items, total, err := h.users.List(rc.Request.Context(), rc.Auth, page, limit)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{
				Data: items,
				Meta: newPageMeta(total, page, limit),
			}, nil
		},
	}
}

func (h *UserHandler) getEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodGet},
		RequireAuth: true,
		Rules:       []validation.Rule{idRule()},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			user, err := h.users.Get(rc.Request.Context(), rc.Auth, id)
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: user}, nil
		},
	}
}

func (h *UserHandler) updateEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPut},
		RequireAuth: true,
		Rules: []validation.Rule{
			idRule(),
			{Field: "email", Type: validation.TypeEmail, MaxLength: 255},
			{Field: "name", Type: validation.TypeString, MinLength: 1, MaxLength: 100},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			user, err := h.users.Update(rc.Request.Context(), rc.Auth, id, users.UpdateUserParams{
				Email: stringFromInput(rc.Input, "email"),
				Name:  stringFromInput(rc.Input, "name"),
			})
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: user, Message: "User updated successfully"}, nil
		},
	}
}

func (h *UserHandler) deleteEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodDelete},
		RequireAuth: true,
		Rules:       []validation.Rule{idRule()},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			if err := h.users.Delete(rc.Request.Context(), rc.Auth, id); err != nil {
				return nil, err
			}
			return &HandlerResult{Message: "User deleted successfully"}, nil
		},
	}
}

// changeRoleEndpoint is the only role mutation path. The last-admin guard
// lives in the service, inside the same transaction as the update.
func (h *UserHandler) changeRoleEndpoint() Endpoint {
	return Endpoint{
		Methods:     []string{http.MethodPatch},
		RequireAuth: true,
		Rules: []validation.Rule{
			idRule(),
			{Field: "role", Required: true, Type: validation.TypeString,
				Custom:  validation.OneOf("admin", "user"),
				Message: "role must be either admin or user"},
		},
		Handler: func(rc *RequestContext) (*HandlerResult, error) {
			id, _ := uuidFromInput(rc.Input, "id")
			user, err := h.users.ChangeRole(rc.Request.Context(), rc.Auth, id,
				domain.Role(stringFromInput(rc.Input, "role")))
			if err != nil {
				return nil, err
			}
			return &HandlerResult{Data: user, Message: "User role updated successfully"}, nil
		},
	}
}
