package auth

import "github.com/geocoder89/todohub/internal/domain/user"

func RequireAuthenticated(id *Identity) error {
	if id == nil {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRole fails with ErrUnauthenticated when there is no identity and
// with ErrForbidden when the identity holds a different role.
func RequireRole(id *Identity, role user.Role) error {
	if err := RequireAuthenticated(id); err != nil {
		return err
	}

	if !role.Known() || id.Role != role {
		return ErrForbidden
	}
	return nil
}
