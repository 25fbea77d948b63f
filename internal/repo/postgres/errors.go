package postgres

import (
	"errors"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

func uniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr, true
	}
	return nil, false
}

// userConflict maps a unique violation on the users table to the field
// that collided. Other errors are returned unchanged.
func userConflict(err error) error {
	pgErr, ok := uniqueViolation(err)
	if !ok {
		return err
	}

	switch pgErr.ConstraintName {
	case usersUsernameKey:
		return &user.ConflictError{Field: "username"}
	case usersEmailKey:
		return &user.ConflictError{Field: "email"}
	default:
		return &user.ConflictError{Field: "user"}
	}
}
