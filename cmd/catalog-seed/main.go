package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/odyssey-catalog/internal/app"
	"github.com/odyssey-erp/odyssey-catalog/internal/auth"
	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

type seedConfig struct {
	Email    string `envconfig:"SEED_ADMIN_EMAIL" default:"admin@catalog.local"`
	Password string `envconfig:"SEED_ADMIN_PASSWORD" required:"true"`
	Name     string `envconfig:"SEED_ADMIN_NAME" default:"Administrator"`
}

func main() {
	if app.InTestMode() {
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	var seed seedConfig
	if err := envconfig.Process("", &seed); err != nil {
		logger.Error("load seed config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = store.Close(context.Background()) }()

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		logger.Error("password hasher", slog.Any("error", err))
		os.Exit(1)
	}
	service := users.NewService(users.NewRepository(store.Users), hasher)

	admin, created, err := seedAdmin(ctx, service, seed)
	if err != nil {
		logger.Error("seed admin", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete", slog.String("id", admin.ID), slog.String("email", admin.Email), slog.Bool("created", created))
}

// seedAdmin creates the administrator, or resets role and password when the
// account already exists.
func seedAdmin(ctx context.Context, service *users.Service, seed seedConfig) (users.User, bool, error) {
	existing, err := service.FindByEmail(ctx, seed.Email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		user, err := service.Create(ctx, users.CreateInput{
			Name:     seed.Name,
			Email:    seed.Email,
			Password: seed.Password,
			Role:     users.RoleAdmin,
		})
		return user, true, err
	case err != nil:
		return users.User{}, false, err
	}

	role := users.RoleAdmin
	user, err := service.Update(ctx, existing.ID, users.UpdateInput{Password: &seed.Password, Role: &role})
	return user, false, err
}
