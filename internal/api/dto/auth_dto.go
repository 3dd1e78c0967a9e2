package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SelectRoleRequest picks the active role for a fresh access token.
type SelectRoleRequest struct {
	RoleCode  domain.RoleCode `json:"role_code"`
	CompanyID *string         `json:"company_id"`
}

// RefreshRequest exchanges a refresh token, optionally carrying the
// active role into the new access token.
type RefreshRequest struct {
	RefreshToken string            `json:"refresh_token"`
	ActiveRole   *domain.RoleClaim `json:"active_role,omitempty"`
}

// LogoutRequest payload.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResponse is returned by register, login, select-role and
// refresh.
type SessionResponse struct {
	User               UserResponse       `json:"user"`
	AccessToken        string             `json:"access_token"`
	AccessExpiresAt    time.Time          `json:"access_expires_at"`
	RefreshToken       string             `json:"refresh_token"`
	Roles              []domain.RoleClaim `json:"roles"`
	ActiveRole         *domain.RoleClaim  `json:"active_role"`
	NeedsRoleSelection bool               `json:"needs_role_selection"`
}
