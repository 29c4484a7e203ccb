package model

import "time"

// AdminRole enumerates the roles an administrator can hold.
type AdminRole string

const (
	// RoleSuperAdmin may manage other admin accounts in addition to exam data.
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
	// RoleOperator may author exam data but not manage admin accounts.
	RoleOperator AdminRole = "OPERATOR"
)

// Admin represents an administrator account.
type Admin struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         AdminRole `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
