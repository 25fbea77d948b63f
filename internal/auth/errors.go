package auth

import "errors"

var (
	// ErrUnauthenticated covers bad credentials and any invalid, expired or
	// malformed token. Callers must not tell the causes apart.
	ErrUnauthenticated = errors.New("could not validate user")

	// ErrForbidden means the identity is valid but lacks the required role.
	ErrForbidden = errors.New("insufficient role")
)
