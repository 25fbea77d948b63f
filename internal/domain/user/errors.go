package user

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("user already exists")
)

// ConflictError reports which unique field collided on insert.
type ConflictError struct {
	Field string // "username" or "email"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is already in use", e.Field)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
