package user

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleUnknown Role = "unknown"
)

// ParseRole maps a stored or submitted role string onto the known set.
// Anything unrecognised becomes RoleUnknown, which satisfies no role check.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		return RoleUnknown
	}
}

func (r Role) Known() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string {
	return string(r)
}
