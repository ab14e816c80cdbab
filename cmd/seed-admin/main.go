// Command seed-admin creates an administrator account directly in the
// database. Public registration always produces regular users, so the first
// administrator has to be bootstrapped out of band with this tool.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/domain"
	"github.com/taskhive/taskhive-api/internal/platform/postgres"
	"github.com/taskhive/taskhive-api/internal/service/auth"
)

func main() {
	email := flag.String("email", "", "email address for the administrator account")
	name := flag.String("name", "Administrator", "display name for the administrator account")
	flag.Parse()

	if *email == "" {
		log.Fatal("usage: seed-admin -email <address> [-name <name>]; password is read from SEED_ADMIN_PASSWORD")
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := run(context.Background(), cfg, *email, *name, password); err != nil {
		log.Fatalf("failed to seed administrator: %v", err)
	}

	fmt.Printf("administrator %s created\n", *email)
}

func run(ctx context.Context, cfg *config.Config, email, name, password string) error {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	user, err := domain.NewUser(email, name, password, domain.RoleAdmin)
	if err != nil {
		return err
	}

	hash, err := auth.NewBcryptHasher().Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	return postgres.NewPostgresUserStore(db, nil).Create(ctx, user)
}
