package domain

import "time"

// RoleClaim is the (role, company) pair carried inside a credential,
// both in the full assignment list and as the active-role selection.
type RoleClaim struct {
	Code      RoleCode `json:"code"`
	CompanyID *string  `json:"company_id"`
}

// Matches reports whether the claim refers to the same (role, company)
// pair as the assignment.
func (c RoleClaim) Matches(a *RoleAssignment) bool {
	return c.Code == a.RoleCode && a.MatchesCompany(c.CompanyID)
}

// RefreshToken is a durable credential for re-issuing access tokens.
// Only the SHA-256 hash of the token is ever stored.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the refresh token may still be exchanged.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
