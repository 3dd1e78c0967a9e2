package auth

import "github.com/spec-kit/helpdesk-service/internal/domain"

// RequestContext carries the authenticated identity and the resolved
// active role for exactly one request. It is passed explicitly to every
// downstream check and never stored in process-global state: one server
// handles concurrent requests for many users and tenants.
type RequestContext struct {
	UserID     string
	User       *domain.User
	Roles      []domain.RoleClaim
	ActiveRole *domain.RoleClaim
}

// ActiveCompanyID returns the company scope of the active role, or nil
// for platform-wide roles and legacy tokens.
func (rc RequestContext) ActiveCompanyID() *string {
	if rc.ActiveRole == nil {
		return nil
	}
	return rc.ActiveRole.CompanyID
}

// IsActiveRole reports whether the active role carries the given code.
func (rc RequestContext) IsActiveRole(code domain.RoleCode) bool {
	return rc.ActiveRole != nil && rc.ActiveRole.Code == code
}

// IsActiveRoleOneOf reports whether the active role is among the codes.
func (rc RequestContext) IsActiveRoleOneOf(codes ...domain.RoleCode) bool {
	for _, code := range codes {
		if rc.IsActiveRole(code) {
			return true
		}
	}
	return false
}
