package dto

import (
	"time"

	"github.com/daviddurazo/buho-soporte-digital/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      domain.UserRole `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse describes a profile for API consumers.
type ProfileResponse struct {
	ID         string                  `json:"id"`
	FirstName  string                  `json:"first_name"`
	LastName   string                  `json:"last_name"`
	Email      string                  `json:"email"`
	Role       domain.UserRole         `json:"role"`
	Active     bool                    `json:"active"`
	Categories []domain.TicketCategory `json:"categories"`
	CreatedAt  time.Time               `json:"created_at"`
}

// AuthResponse bundles token and profile after register/login.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UpdateRoleRequest payload (admin only).
type UpdateRoleRequest struct {
	Role domain.UserRole `json:"role"`
}
