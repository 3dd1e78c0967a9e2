package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AssignRoleRequest payload.
type AssignRoleRequest struct {
	UserID    string          `json:"user_id"`
	RoleCode  domain.RoleCode `json:"role_code"`
	CompanyID *string         `json:"company_id"`
}

// RoleAssignmentResponse response.
type RoleAssignmentResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	RoleCode   domain.RoleCode `json:"role_code"`
	CompanyID  *string         `json:"company_id"`
	Active     bool            `json:"active"`
	AssignedAt time.Time       `json:"assigned_at"`
	RevokedAt  *time.Time      `json:"revoked_at"`
}
