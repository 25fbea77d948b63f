package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/domain/user"
)

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminUser creates the configured admin account when it is missing.
// It is a no-op without ADMIN_EMAIL and ADMIN_PASSWORD and never touches an
// existing account.
func EnsureAdminUser(ctx context.Context, users AdminStore, hasher PasswordHasher, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := user.New(user.CreateUserRequest{
		Username:  cfg.AdminUsername,
		Email:     cfg.AdminEmail,
		FirstName: "Admin",
		LastName:  "User",
		Role:      string(user.RoleAdmin),
	}, hash)

	created, err := users.Create(ctx, admin)
	if errors.Is(err, user.ErrConflict) {
		// another replica won the race
		return nil
	}
	if err != nil {
		return err
	}

	slog.Default().InfoContext(ctx, "admin_seeded", "user_id", created.ID, "username", created.Username)
	return nil
}
