package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/breaddesk/breaddesk-backend/internal/users"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/db"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
	"github.com/breaddesk/breaddesk-backend/pkg/security"
)

// Seeds an admin account able to log in and manage the catalog.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "createuser"})

	_ = godotenv.Load()

	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "plaintext password to hash")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createuser -name NAME -email EMAIL -password PASSWORD")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	repo := users.NewRepository(dbClient.DB())
	user, err := repo.Create(ctx, &models.User{
		Name:         strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
	})
	if err != nil {
		logg.Error(ctx, "failed to create user", err)
		os.Exit(1)
	}

	fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
}
