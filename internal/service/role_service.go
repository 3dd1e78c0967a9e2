package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Roles that may grant and revoke assignments, per the catalog.
var roleGranterRoles = domain.RolesWithPermission(domain.PermRoleAssign)

// RoleService manages role assignment lifecycle. Revoked assignments
// are never reactivated; granting a role again creates a fresh record.
type RoleService struct {
	assignments repository.RoleAssignmentRepository
	users       repository.UserRepository
	companies   repository.CompanyRepository
	gate        *auth.Gate
	dispatcher  events.Dispatcher
}

// RoleDependencies bundles requirements for the role service.
type RoleDependencies struct {
	RoleAssignmentRepo repository.RoleAssignmentRepository
	UserRepo           repository.UserRepository
	CompanyRepo        repository.CompanyRepository
	Gate               *auth.Gate
	Dispatcher         events.Dispatcher
}

// RoleAssignInput describes a role grant.
type RoleAssignInput struct {
	UserID    string
	RoleCode  domain.RoleCode
	CompanyID *string
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{
		assignments: deps.RoleAssignmentRepo,
		users:       deps.UserRepo,
		companies:   deps.CompanyRepo,
		gate:        deps.Gate,
		dispatcher:  deps.Dispatcher,
	}
}

// Assign grants a role to a user. Company admins may only grant roles
// inside their own company; platform admins are unrestricted.
func (s *RoleService) Assign(ctx context.Context, rc auth.RequestContext, input RoleAssignInput) (*domain.RoleAssignment, error) {
	role, ok := domain.RoleByCode(input.RoleCode)
	if !ok {
		return nil, apperrors.NewValidationError("unknown role code", map[string]any{"role_code": input.RoleCode})
	}
	if role.RequiresCompany && input.CompanyID == nil {
		return nil, apperrors.NewValidationError("role requires a company", map[string]any{"role_code": input.RoleCode})
	}
	if !role.RequiresCompany && input.CompanyID != nil {
		return nil, apperrors.NewValidationError("role is not company scoped", map[string]any{"role_code": input.RoleCode})
	}

	// Platform-wide roles can only be granted from the platform hat.
	allowedGranters := roleGranterRoles
	if !role.RequiresCompany {
		allowedGranters = platformOnly(allowedGranters)
	}
	if err := s.gate.Authorize(ctx, rc, allowedGranters, input.CompanyID); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, apperrors.MapError(err)
	}
	if input.CompanyID != nil {
		if _, err := s.companies.GetByID(ctx, *input.CompanyID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("company", map[string]any{"company_id": *input.CompanyID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	existing, err := s.assignments.Find(ctx, input.UserID, input.RoleCode, input.CompanyID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}
	if existing != nil && existing.Satisfies() {
		return nil, apperrors.NewConflict("ALREADY_ASSIGNED", "role is already assigned to user")
	}

	assignerID := rc.UserID
	assignment := &domain.RoleAssignment{
		UserID:       input.UserID,
		RoleCode:     input.RoleCode,
		CompanyID:    input.CompanyID,
		Active:       true,
		AssignedByID: &assignerID,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRoleAssigned,
		SubjectID: input.UserID,
		Actor:     requestActor(rc),
		Payload: events.RoleAssignedPayload{
			AssignmentID: assignment.ID,
			RoleCode:     assignment.RoleCode,
			CompanyID:    assignment.CompanyID,
		},
	})
	return assignment, nil
}

// Revoke deactivates an assignment permanently.
func (s *RoleService) Revoke(ctx context.Context, rc auth.RequestContext, assignmentID string) error {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("role assignment", map[string]any{"assignment_id": assignmentID})
		}
		return apperrors.MapError(err)
	}

	if err := s.gate.Authorize(ctx, rc, roleGranterRoles, assignment.CompanyID); err != nil {
		return err
	}

	if assignment.RevokedAt != nil {
		return apperrors.NewConflict("ALREADY_REVOKED", "role assignment is already revoked")
	}

	revokerID := rc.UserID
	if err := s.assignments.Revoke(ctx, assignmentID, &revokerID); err != nil {
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRoleRevoked,
		SubjectID: assignment.UserID,
		Actor:     requestActor(rc),
		Payload: events.RoleRevokedPayload{
			AssignmentID: assignment.ID,
			RoleCode:     assignment.RoleCode,
		},
	})
	return nil
}

// ListForUser returns the user's assignments. Users may list their
// own; listing another user's requires an admin hat.
func (s *RoleService) ListForUser(ctx context.Context, rc auth.RequestContext, userID string) ([]domain.RoleAssignment, error) {
	if rc.UserID != userID {
		if err := s.gate.Authorize(ctx, rc, roleGranterRoles, nil); err != nil {
			return nil, err
		}
	}
	result, err := s.assignments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

func (s *RoleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requestActor(rc auth.RequestContext) events.Actor {
	return events.Actor{UserID: rc.UserID, Role: rc.ActiveRole}
}

// platformOnly strips company-scoped roles from a granter set.
func platformOnly(codes []domain.RoleCode) []domain.RoleCode {
	var result []domain.RoleCode
	for _, code := range codes {
		if role, ok := domain.RoleByCode(code); ok && !role.RequiresCompany {
			result = append(result, code)
		}
	}
	return result
}
