package domain

import "time"

// RoleAssignment grants a user a role, optionally scoped to one company.
type RoleAssignment struct {
	ID           string
	UserID       string
	RoleCode     RoleCode
	CompanyID    *string
	Active       bool
	AssignedAt   time.Time
	RevokedAt    *time.Time
	AssignedByID *string
	RevokedByID  *string
}

// Satisfies reports whether this assignment may back an authorization
// decision. A revoked assignment never satisfies again, even if the
// active flag is toggled without clearing revoked_at.
func (a *RoleAssignment) Satisfies() bool {
	return a.Active && a.RevokedAt == nil
}

// MatchesCompany reports whether the assignment's company scope equals
// the given one; both nil counts as a match (platform-wide).
func (a *RoleAssignment) MatchesCompany(companyID *string) bool {
	if a.CompanyID == nil && companyID == nil {
		return true
	}
	if a.CompanyID == nil || companyID == nil {
		return false
	}
	return *a.CompanyID == *companyID
}
