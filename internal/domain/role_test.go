package domain

import "testing"

func equalCodes(a, b []RoleCode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRolesWithPermissionSingle(t *testing.T) {
	cases := []struct {
		perm Permission
		want []RoleCode
	}{
		{PermTicketResolve, []RoleCode{RoleAgent, RoleCompanyAdmin}},
		{PermTicketDelete, []RoleCode{RoleCompanyAdmin, RolePlatformAdmin}},
		{PermRoleAssign, []RoleCode{RoleCompanyAdmin, RolePlatformAdmin}},
		{PermAnnouncementManage, []RoleCode{RoleCompanyAdmin, RolePlatformAdmin}},
		{PermCompanyManage, []RoleCode{RoleCompanyAdmin, RolePlatformAdmin}},
		{PermTicketCreate, []RoleCode{RoleUser}},
	}
	for _, c := range cases {
		got := RolesWithPermission(c.perm)
		if !equalCodes(got, c.want) {
			t.Fatalf("RolesWithPermission(%s) = %v, want %v", c.perm, got, c.want)
		}
	}
}

func TestRolesWithPermissionUnion(t *testing.T) {
	// A role appears once even when it grants several of the requested
	// permissions.
	got := RolesWithPermission(PermTicketResolve, PermTicketDelete)
	want := []RoleCode{RoleAgent, RoleCompanyAdmin, RolePlatformAdmin}
	if !equalCodes(got, want) {
		t.Fatalf("union = %v, want %v", got, want)
	}
}

func TestRoleHasPermission(t *testing.T) {
	agent, ok := RoleByCode(RoleAgent)
	if !ok {
		t.Fatalf("AGENT missing from catalog")
	}
	if !agent.HasPermission(PermTicketResolve) {
		t.Fatalf("AGENT should resolve tickets")
	}
	if agent.HasPermission(PermTicketDelete) {
		t.Fatalf("AGENT must not delete tickets")
	}

	platform, _ := RoleByCode(RolePlatformAdmin)
	if platform.HasPermission(PermTicketRespond) {
		t.Fatalf("PLATFORM_ADMIN has no agent capacity on tickets")
	}
}
