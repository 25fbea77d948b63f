package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	IsActive     bool      `json:"isActive"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"first_name" binding:"required,max=80"`
	LastName    string `json:"last_name" binding:"required,max=80"`
	PhoneNumber string `json:"phone_number" binding:"omitempty,max=32"`
	Password    string `json:"password" binding:"required,min=8,maxbytes=72"`
	Role        string `json:"role" binding:"omitempty,role"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// New builds an active user record from a registration request. The caller
// supplies the already computed password hash.
func New(req CreateUserRequest, passwordHash string) User {
	role := ParseRole(req.Role)
	if req.Role == "" {
		role = RoleUser
	}

	return User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: passwordHash,
		IsActive:     true,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}
