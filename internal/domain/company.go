package domain

import "time"

// CompanyStatus gates whether a tenant accepts new tickets.
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "ACTIVE"
	CompanyStatusSuspended CompanyStatus = "SUSPENDED"
)

// Company is the tenant boundary. Every tenant-scoped resource carries
// a company reference and cross-company references are never allowed.
type Company struct {
	ID        string
	Name      string
	Industry  string
	Status    CompanyStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category classifies tickets inside one company.
type Category struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Area is an optional organizational unit inside one company.
type Area struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
