package models

import "time"

// User roles. Admin roles may read every user's tracking data.
const (
	RoleUser          = "user"
	RolePlatformAdmin = "padmin"
	RoleCompanyAdmin  = "cadmin"
	RoleDeveloper     = "dev"
	// RoleService is the principal behind the static API key.
	RoleService = "service"
)

// IsAdminRole reports whether role may read other users' data.
func IsAdminRole(role string) bool {
	switch role {
	case RolePlatformAdmin, RoleCompanyAdmin, RoleDeveloper, RoleService:
		return true
	}
	return false
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	HashedPassword []byte    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
