package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"restaurantservice/internal/auth"
	"restaurantservice/internal/config"
	"restaurantservice/internal/db"
	"restaurantservice/internal/model"
	"restaurantservice/internal/repository"
	"restaurantservice/internal/service"
)

const adminUsername = "admin"

// Creates the tables, the admin user and a fresh API token, then prints the
// token's bearer value. Running it again reuses the existing admin.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg, os.Stderr)

	bearer, err := seed(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(bearer)
}

func seed(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	gormDB, err := db.Open(cfg, logger)
	if err != nil {
		return "", err
	}
	if err := db.Migrate(gormDB); err != nil {
		return "", err
	}

	users := service.NewUserService(repository.NewUserRepository(repository.NewStore(gormDB)), nil, 0, logger)

	admin, err := ensureAdmin(ctx, users, cfg.AdminPassword)
	if err != nil {
		return "", err
	}

	token, err := users.CreateUserToken(ctx, admin)
	if err != nil {
		return "", err
	}
	return auth.NewTokenCodec(cfg.SecretKey).Encode(admin.ID, token.ID)
}

func ensureAdmin(ctx context.Context, users service.UserService, password string) (*model.User, error) {
	admin, err := users.CreateUser(ctx, service.CreateUserInput{
		Username:  adminUsername,
		Password:  password,
		FirstName: "Admin",
		LastName:  "Admin",
		Email:     "admin@restaurant.local",
		IsAdmin:   true,
	})
	if err == nil {
		return admin, nil
	}

	var exists *service.UserAlreadyExists
	if !errors.As(err, &exists) {
		return nil, err
	}

	all, err := users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Username == adminUsername {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("admin user conflicts on %s but was not found", exists.Field)
}
