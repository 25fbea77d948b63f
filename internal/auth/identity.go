package auth

import "github.com/geocoder89/todohub/internal/domain/user"

// Identity is the verified caller of a single request.
type Identity struct {
	Username string    `json:"username"`
	ID       int64     `json:"id"`
	Role     user.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}
