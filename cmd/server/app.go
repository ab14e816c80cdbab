package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskhive/taskhive-api/internal/api"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/platform/postgres"
	"github.com/taskhive/taskhive-api/internal/policy"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/service/identity"
	"github.com/taskhive/taskhive-api/internal/service/tasks"
	"github.com/taskhive/taskhive-api/internal/service/users"
	"github.com/taskhive/taskhive-api/internal/store"
)

// application holds the wired dependencies of the running server. Everything
// hangs off this struct so the router and lifecycle code share one view of
// the world.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	resolver *identity.Resolver
	users    *users.Service
	tasks    *tasks.Service

	userHandler *api.UserHandler
	taskHandler *api.TaskHandler
}

// newApplication wires stores, services, and handlers from the given
// configuration and database handle.
func newApplication(_ context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	transactor := store.NewSQLTransactor(db)

	verifier, err := auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	resolver := identity.NewResolver(verifier, userStore, cfg.Auth, logger)
	pol := policy.New()

	userService := users.NewService(userStore, pol, auth.NewBcryptHasher(), resolver, transactor, logger)
	taskService := tasks.NewService(taskStore, pol, logger)

	pipeline := api.NewPipeline(resolver, logger)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		resolver:    resolver,
		users:       userService,
		tasks:       taskService,
		userHandler: api.NewUserHandler(userService, pipeline, logger),
		taskHandler: api.NewTaskHandler(taskService, pipeline, logger),
	}, nil
}
