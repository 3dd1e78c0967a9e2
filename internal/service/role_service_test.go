package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type roleEnv struct {
	service     *RoleService
	assignments *fakeAssignmentRepo
	users       *fakeUserRepo
	companies   *fakeCompanyRepo
	company     *domain.Company
	user        *domain.User
}

func newRoleEnv() *roleEnv {
	env := &roleEnv{
		assignments: &fakeAssignmentRepo{},
		users:       newFakeUserRepo(),
		companies:   newFakeCompanyRepo(),
	}
	env.company = env.companies.add(&domain.Company{Name: "Acme", Status: domain.CompanyStatusActive})
	env.user = env.users.add(&domain.User{ID: "u1", Name: "Pat", Email: "pat@example.com", Status: domain.UserStatusActive})
	env.service = NewRoleService(RoleDependencies{
		RoleAssignmentRepo: env.assignments,
		UserRepo:           env.users,
		CompanyRepo:        env.companies,
		Gate:               auth.NewGate(env.assignments),
		Dispatcher:         events.NewInMemoryDispatcher(zap.NewNop()),
	})
	return env
}

func (env *roleEnv) companyAdmin(userID string) auth.RequestContext {
	claim := domain.RoleClaim{Code: domain.RoleCompanyAdmin, CompanyID: &env.company.ID}
	env.assignments.items = append(env.assignments.items, domain.RoleAssignment{
		ID: "as-" + userID, UserID: userID, RoleCode: domain.RoleCompanyAdmin, CompanyID: &env.company.ID, Active: true,
	})
	return auth.RequestContext{UserID: userID, Roles: []domain.RoleClaim{claim}, ActiveRole: &claim}
}

func (env *roleEnv) platformAdmin(userID string) auth.RequestContext {
	claim := domain.RoleClaim{Code: domain.RolePlatformAdmin}
	env.assignments.items = append(env.assignments.items, domain.RoleAssignment{
		ID: "as-" + userID, UserID: userID, RoleCode: domain.RolePlatformAdmin, Active: true,
	})
	return auth.RequestContext{UserID: userID, Roles: []domain.RoleClaim{claim}, ActiveRole: &claim}
}

func TestRoleAssignCompanyScoping(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")

	// AGENT requires a company.
	_, err := env.service.Assign(context.Background(), admin, RoleAssignInput{
		UserID:   env.user.ID,
		RoleCode: domain.RoleAgent,
	})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected company requirement violation, got %v", err)
	}

	// PLATFORM_ADMIN must not carry one.
	_, err = env.service.Assign(context.Background(), env.platformAdmin("root"), RoleAssignInput{
		UserID:    env.user.ID,
		RoleCode:  domain.RolePlatformAdmin,
		CompanyID: &env.company.ID,
	})
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("expected scope violation for platform role with company, got %v", err)
	}

	assignment, err := env.service.Assign(context.Background(), admin, RoleAssignInput{
		UserID:    env.user.ID,
		RoleCode:  domain.RoleAgent,
		CompanyID: &env.company.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !assignment.Satisfies() {
		t.Fatalf("fresh assignment should be active: %+v", assignment)
	}
	if assignment.AssignedByID == nil || *assignment.AssignedByID != "adm1" {
		t.Fatalf("granter not recorded: %+v", assignment.AssignedByID)
	}
}

func TestRoleAssignDuplicateRejected(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")
	input := RoleAssignInput{UserID: env.user.ID, RoleCode: domain.RoleAgent, CompanyID: &env.company.ID}

	if _, err := env.service.Assign(context.Background(), admin, input); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if _, err := env.service.Assign(context.Background(), admin, input); !apperrors.IsCode(err, "ALREADY_ASSIGNED") {
		t.Fatalf("expected ALREADY_ASSIGNED, got %v", err)
	}
}

func TestRoleReassignAfterRevokeCreatesFreshRecord(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")
	input := RoleAssignInput{UserID: env.user.ID, RoleCode: domain.RoleAgent, CompanyID: &env.company.ID}

	first, err := env.service.Assign(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := env.service.Revoke(context.Background(), admin, first.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	second, err := env.service.Assign(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("reassign after revoke: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("revoked assignment must not be reactivated")
	}

	// The old record stays revoked and remembers who revoked it.
	old, err := env.assignments.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if old.RevokedAt == nil || old.Satisfies() {
		t.Fatalf("old assignment should remain revoked: %+v", old)
	}
	if old.RevokedByID == nil || *old.RevokedByID != "adm1" {
		t.Fatalf("revoker not recorded: %+v", old.RevokedByID)
	}

	// The leftover revoked row must not mask the active one: a third
	// grant of the same (user, role, company) is a duplicate.
	if _, err := env.service.Assign(context.Background(), admin, input); !apperrors.IsCode(err, "ALREADY_ASSIGNED") {
		t.Fatalf("expected ALREADY_ASSIGNED after regrant cycle, got %v", err)
	}
}

func TestRoleRevokeTwiceConflicts(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")

	assignment, err := env.service.Assign(context.Background(), admin, RoleAssignInput{
		UserID: env.user.ID, RoleCode: domain.RoleAgent, CompanyID: &env.company.ID,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := env.service.Revoke(context.Background(), admin, assignment.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := env.service.Revoke(context.Background(), admin, assignment.ID); !apperrors.IsCode(err, "ALREADY_REVOKED") {
		t.Fatalf("expected ALREADY_REVOKED, got %v", err)
	}
}

func TestRolePlatformRoleNeedsPlatformGranter(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")

	_, err := env.service.Assign(context.Background(), admin, RoleAssignInput{
		UserID:   env.user.ID,
		RoleCode: domain.RolePlatformAdmin,
	})
	if !apperrors.IsCode(err, auth.ReasonInsufficientPermissions) {
		t.Fatalf("company admin must not grant platform roles, got %v", err)
	}

	if _, err := env.service.Assign(context.Background(), env.platformAdmin("root"), RoleAssignInput{
		UserID:   env.user.ID,
		RoleCode: domain.RolePlatformAdmin,
	}); err != nil {
		t.Fatalf("platform admin grant: %v", err)
	}
}

func TestRoleListForUserAuthorization(t *testing.T) {
	env := newRoleEnv()
	admin := env.companyAdmin("adm1")
	if _, err := env.service.Assign(context.Background(), admin, RoleAssignInput{
		UserID: env.user.ID, RoleCode: domain.RoleAgent, CompanyID: &env.company.ID,
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// The user lists their own assignments.
	userClaim := domain.RoleClaim{Code: domain.RoleUser}
	self := auth.RequestContext{UserID: env.user.ID, Roles: []domain.RoleClaim{userClaim}, ActiveRole: &userClaim}
	own, err := env.service.ListForUser(context.Background(), self, env.user.ID)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(own))
	}

	// A stranger without an admin hat is denied.
	stranger := auth.RequestContext{UserID: "x9", Roles: []domain.RoleClaim{userClaim}, ActiveRole: &userClaim}
	if _, err := env.service.ListForUser(context.Background(), stranger, env.user.ID); !apperrors.IsCode(err, auth.ReasonInsufficientPermissions) {
		t.Fatalf("expected denial for stranger, got %v", err)
	}
}
