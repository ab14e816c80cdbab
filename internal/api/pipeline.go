package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskhive/taskhive-api/internal/api/shared"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/service/identity"
	"github.com/taskhive/taskhive-api/internal/validation"
)

// maxBodyBytes caps request bodies well above any legitimate payload.
const maxBodyBytes = 1 << 20

// RequestContext is what an endpoint handler receives: the resolved caller,
// the validated input map (body fields, URL params and query values merged),
// and the raw request for anything else.
type RequestContext struct {
	Request *http.Request
	Auth    *domain.AuthContext
	Input   map[string]any
}

// HandlerResult is a successful handler outcome. Status defaults to 200 when
// zero; Message and Meta are optional.
type HandlerResult struct {
	Status  int
	Data    any
	Message string
	Meta    any
}

// HandlerFunc is the pure business handler an endpoint supplies. It returns
// either a result or an error; errors are classified at the pipeline
// boundary, so handlers never write HTTP responses themselves.
type HandlerFunc func(rc *RequestContext) (*HandlerResult, error)

// Endpoint declares one route: which methods it accepts, whether a caller
// must be authenticated, which roles may pass (empty means any), the
// validation rules for its input, and the business handler.
type Endpoint struct {
	Methods     []string
	RequireAuth bool
	Roles       []domain.Role
	Rules       []validation.Rule
	Handler     HandlerFunc
}

// Pipeline builds http.Handlers from Endpoint declarations. It is the single
// place where method checking, authentication, validation, authorization and
// error shaping compose; endpoints supply only rules and a handler.
type Pipeline struct {
	resolver *identity.Resolver
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline around the given identity resolver.
func NewPipeline(resolver *identity.Resolver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{resolver: resolver, logger: logger}
}

// Build composes the endpoint's stages into one http.HandlerFunc. Stages run
// in a fixed order and each failure short-circuits: method (405), auth (401),
// validation (400 with the full details list), role gate (403), then the
// handler. Handler errors are classified exactly once, here.
func (p *Pipeline) Build(e Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(e.Methods, r.Method) {
			w.Header().Set("Allow", strings.Join(e.Methods, ", "))
			shared.RespondWithError(w, r, http.StatusMethodNotAllowed, CodeMethod, "Method not allowed", nil)
			return
		}

		auth, err := p.resolver.Resolve(r.Context(), r, e.RequireAuth)
		if err != nil {
			c := ClassifyError(err)
			shared.RespondWithErrorAndLog(w, r, c.Status, c.Code, c.Message, err,
				shared.WithElevatedLogLevel())
			return
		}

		input, err := collectInput(r)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, CodeValidation, "Invalid request body", nil)
			return
		}

		if len(e.Rules) > 0 {
			result := validation.Validate(input, e.Rules)
			if !result.Ok() {
				shared.RespondWithError(w, r, http.StatusBadRequest, CodeValidation,
					result.Message(), result.Errors)
				return
			}
		}

		if len(e.Roles) > 0 && !slices.Contains(e.Roles, auth.Role()) {
			shared.RespondWithError(w, r, http.StatusForbidden, CodeForbidden,
				policy.ReasonAdminOnly, nil)
			return
		}

		result, err := e.Handler(&RequestContext{Request: r, Auth: auth, Input: input})
		if err != nil {
			c := ClassifyError(err)
			shared.RespondWithErrorAndLog(w, r, c.Status, c.Code, c.Message, err)
			return
		}

		status := result.Status
		if status == 0 {
			status = http.StatusOK
		}
		shared.RespondWithSuccess(w, r, status, result.Data, result.Message, result.Meta)
	}
}

// Mux dispatches between endpoints that share a path but differ per method,
// e.g. a public POST and an admin-only GET on the same collection. A request
// whose method matches no endpoint gets a 405 naming every accepted method.
func (p *Pipeline) Mux(endpoints ...Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, e := range endpoints {
			if slices.Contains(e.Methods, r.Method) {
				p.Build(e)(w, r)
				return
			}
			allowed = append(allowed, e.Methods...)
		}

		w.Header().Set("Allow", strings.Join(allowed, ", "))
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, CodeMethod, "Method not allowed", nil)
	}
}

// collectInput merges the request's JSON body (when present), chi URL
// parameters and query string values into one map for validation. URL and
// query values shadow body fields of the same name so a client cannot spoof
// a path parameter through the body.
func collectInput(r *http.Request) (map[string]any, error) {
	input := make(map[string]any)

	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodDelete {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &input); err != nil {
				return nil, err
			}
		}
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			input[key] = values[0]
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			input[key] = rctx.URLParams.Values[i]
		}
	}

	return input, nil
}
