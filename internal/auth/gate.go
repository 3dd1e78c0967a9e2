package auth

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Denial reason codes surfaced to callers.
const (
	ReasonRoleNotActive           = "ROLE_NOT_ACTIVE"
	ReasonInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	ReasonWrongCompany            = "WRONG_COMPANY"
)

// Gate decides allow/deny for a required capability against a target
// resource's company. It is a pure decision function over the request
// context and the assignment store; it performs no writes and leaves
// denial logging to callers.
type Gate struct {
	assignments repository.RoleAssignmentRepository
}

// NewGate constructs the authorization gate.
func NewGate(assignments repository.RoleAssignmentRepository) *Gate {
	return &Gate{assignments: assignments}
}

// Authorize checks that the request's active role covers one of the
// required role codes and that the target company (when given) matches
// the active company. The active-role claim is never trusted blindly:
// it must correspond to a still-active, non-revoked assignment at
// evaluation time.
//
// Tokens minted before role selection existed carry no active role;
// for those, any still-active assignment with a required role code
// suffices (weaker, backward-compatible guarantee).
func (g *Gate) Authorize(ctx context.Context, rc RequestContext, requiredRoles []domain.RoleCode, resourceCompanyID *string) error {
	assignments, err := g.assignments.ListActiveByUser(ctx, rc.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if rc.ActiveRole == nil {
		return g.authorizeLegacy(assignments, requiredRoles, resourceCompanyID)
	}

	active := findAssignment(assignments, *rc.ActiveRole)
	if active == nil {
		return apperrors.NewAuthorization(ReasonRoleNotActive, "active role is no longer assigned")
	}

	if len(requiredRoles) > 0 && !roleIn(active.RoleCode, requiredRoles) {
		// Holding a required role in some other (role, company) pair is
		// not enough: the active hat is what counts.
		if holdsAnyRole(assignments, requiredRoles) {
			return apperrors.NewAuthorization(ReasonRoleNotActive, "required role is assigned but not active")
		}
		return apperrors.NewAuthorization(ReasonInsufficientPermissions, "role does not permit this action")
	}

	if resourceCompanyID != nil && !platformWide(active.RoleCode) {
		activeCompany := rc.ActiveCompanyID()
		if activeCompany == nil || *activeCompany != *resourceCompanyID {
			return apperrors.NewAuthorization(ReasonWrongCompany, "resource belongs to another company")
		}
	}

	return nil
}

func (g *Gate) authorizeLegacy(assignments []domain.RoleAssignment, requiredRoles []domain.RoleCode, resourceCompanyID *string) error {
	for i := range assignments {
		a := &assignments[i]
		if !a.Satisfies() {
			continue
		}
		if len(requiredRoles) > 0 && !roleIn(a.RoleCode, requiredRoles) {
			continue
		}
		if resourceCompanyID != nil && !platformWide(a.RoleCode) && !a.MatchesCompany(resourceCompanyID) {
			continue
		}
		return nil
	}
	if resourceCompanyID != nil && holdsAnyRole(assignments, requiredRoles) {
		return apperrors.NewAuthorization(ReasonWrongCompany, "resource belongs to another company")
	}
	return apperrors.NewAuthorization(ReasonInsufficientPermissions, "role does not permit this action")
}

func findAssignment(assignments []domain.RoleAssignment, claim domain.RoleClaim) *domain.RoleAssignment {
	for i := range assignments {
		if assignments[i].Satisfies() && claim.Matches(&assignments[i]) {
			return &assignments[i]
		}
	}
	// Users with no stored assignments authenticate with the implicit
	// USER claim; honor it so they can act on their own resources.
	if claim.Code == domain.RoleUser && claim.CompanyID == nil && len(assignments) == 0 {
		return &domain.RoleAssignment{RoleCode: domain.RoleUser, Active: true}
	}
	return nil
}

func holdsAnyRole(assignments []domain.RoleAssignment, codes []domain.RoleCode) bool {
	for i := range assignments {
		if assignments[i].Satisfies() && roleIn(assignments[i].RoleCode, codes) {
			return true
		}
	}
	return false
}

func roleIn(code domain.RoleCode, codes []domain.RoleCode) bool {
	for _, candidate := range codes {
		if candidate == code {
			return true
		}
	}
	return false
}

func platformWide(code domain.RoleCode) bool {
	role, ok := domain.RoleByCode(code)
	return ok && !role.RequiresCompany
}
