package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCompanyRequest payload.
type CreateCompanyRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

// UpdateCompanyStatusRequest payload.
type UpdateCompanyStatusRequest struct {
	Status domain.CompanyStatus `json:"status"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateAreaRequest payload.
type CreateAreaRequest struct {
	Name string `json:"name"`
}

// CompanyResponse response.
type CompanyResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Industry  string               `json:"industry"`
	Status    domain.CompanyStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}

// AreaResponse response.
type AreaResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}
