package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal/api"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/mocks"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/service/identity"
	"github.com/taskhive/taskhive-api/internal/service/tasks"
	"github.com/taskhive/taskhive-api/internal/service/users"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error", ShutdownTimeout: time.Second},
		Auth: config.AuthConfig{
			JWTSecret:       strings.Repeat("k", 32),
			VerifyTimeout:   time.Second,
			ProfileCacheTTL: time.Minute,
		},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userStore := &mocks.MockUserStore{}
	taskStore := &mocks.MockTaskStore{}

	verifier, err := auth.NewTokenVerifier(cfg.Auth)
	require.NoError(t, err)

	resolver := identity.NewResolver(verifier, userStore, cfg.Auth, log)
	pol := policy.New()

	userService := users.NewService(userStore, pol, auth.NewBcryptHasher(), resolver, &mocks.MockTransactor{}, log)
	taskService := tasks.NewService(taskStore, pol, log)
	pipeline := api.NewPipeline(resolver, log)

	return &application{
		config:      cfg,
		logger:      log,
		resolver:    resolver,
		users:       userService,
		tasks:       taskService,
		userHandler: api.NewUserHandler(userService, pipeline, log),
		taskHandler: api.NewTaskHandler(taskService, pipeline, log),
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouterMountsAPIRoutes(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	// Listing users requires authentication, so the route existing at all
	// shows up as a 401 rather than chi's 404.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
