package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rkdoors/storefront-backend/internal/auth"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

// admin-register provisions an administrator without going through the
// HTTP surface, which is closed in production.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-register"})

	_ = godotenv.Load()

	email := flag.String("email", "", "administrator email")
	name := flag.String("name", "", "administrator display name")
	password := flag.String("password", "", "administrator password (defaults to RKDOORS_ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("RKDOORS_ADMIN_PASSWORD")
	}
	if *email == "" || *name == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: admin-register -email <email> -name <name> [-password <password>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.Open(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create admin register service", err)
		os.Exit(1)
	}

	user, err := svc.Register(ctx, auth.AdminRegisterRequest{
		DisplayName: *name,
		Email:       *email,
		Password:    *password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "admin registration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("created administrator:", user.Email, user.ID)
}
