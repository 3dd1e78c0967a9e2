package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func testAssignments() []domain.RoleAssignment {
	return []domain.RoleAssignment{
		{ID: "as1", UserID: "u1", RoleCode: domain.RoleUser, Active: true},
		{ID: "as2", UserID: "u1", RoleCode: domain.RoleAgent, CompanyID: strPtr("c1"), Active: true},
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	selection := &domain.RoleClaim{Code: domain.RoleAgent, CompanyID: strPtr("c1")}

	token, expiresAt, err := tm.Issue("u1", testAssignments(), selection)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry in the past")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 2 {
		t.Fatalf("expected 2 role claims, got %d", len(claims.Roles))
	}
	if claims.ActiveRole == nil || claims.ActiveRole.Code != domain.RoleAgent {
		t.Fatalf("active role not carried")
	}
	if claims.ActiveRole.CompanyID == nil || *claims.ActiveRole.CompanyID != "c1" {
		t.Fatalf("active company not carried")
	}
}

func TestIssueDefaultsToFirstAssignment(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	token, _, err := tm.Issue("u1", testAssignments(), nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ActiveRole == nil || claims.ActiveRole.Code != domain.RoleUser {
		t.Fatalf("expected first assignment as default active role")
	}
}

func TestIssueRejectsUnheldSelection(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	selection := &domain.RoleClaim{Code: domain.RolePlatformAdmin}
	if _, _, err := tm.Issue("u1", testAssignments(), selection); err == nil {
		t.Fatalf("expected rejection of unheld role selection")
	}
}

func TestIssueRejectsSelectionWithWrongCompany(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	selection := &domain.RoleClaim{Code: domain.RoleAgent, CompanyID: strPtr("c2")}
	if _, _, err := tm.Issue("u1", testAssignments(), selection); err == nil {
		t.Fatalf("expected rejection: agent role held for c1, not c2")
	}
}

func TestRoleClaimsSkipRevokedAssignments(t *testing.T) {
	revokedAt := time.Now()
	assignments := []domain.RoleAssignment{
		{ID: "as1", RoleCode: domain.RoleAgent, CompanyID: strPtr("c1"), Active: false, RevokedAt: &revokedAt},
		{ID: "as2", RoleCode: domain.RoleUser, Active: true},
	}
	roles := RoleClaims(assignments)
	if len(roles) != 1 || roles[0].Code != domain.RoleUser {
		t.Fatalf("revoked assignment leaked into claims: %+v", roles)
	}
}

func TestRoleClaimsImplicitUser(t *testing.T) {
	roles := RoleClaims(nil)
	if len(roles) != 1 || roles[0].Code != domain.RoleUser || roles[0].CompanyID != nil {
		t.Fatalf("expected implicit USER claim, got %+v", roles)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	token, _, err := tm.Issue("u1", testAssignments(), nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewTokenManager("different", 60)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("expected signature rejection")
	}
}
