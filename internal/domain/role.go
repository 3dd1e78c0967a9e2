package domain

// RoleCode enumerates the closed set of role kinds.
type RoleCode string

const (
	RoleUser          RoleCode = "USER"
	RoleAgent         RoleCode = "AGENT"
	RoleCompanyAdmin  RoleCode = "COMPANY_ADMIN"
	RolePlatformAdmin RoleCode = "PLATFORM_ADMIN"
)

// Permission enumerates actions a role may perform.
type Permission string

const (
	PermTicketCreate       Permission = "ticket.create"
	PermTicketRespond      Permission = "ticket.respond"
	PermTicketResolve      Permission = "ticket.resolve"
	PermTicketClose        Permission = "ticket.close"
	PermTicketReopen       Permission = "ticket.reopen"
	PermTicketAssign       Permission = "ticket.assign"
	PermTicketDelete       Permission = "ticket.delete"
	PermTicketRate         Permission = "ticket.rate"
	PermRoleAssign         Permission = "role.assign"
	PermAnnouncementManage Permission = "announcement.manage"
	PermCompanyManage      Permission = "company.manage"
)

// Role is immutable catalog reference data.
type Role struct {
	Code            RoleCode
	RequiresCompany bool
	Permissions     []Permission
}

var roleCatalog = map[RoleCode]Role{
	RoleUser: {
		Code:            RoleUser,
		RequiresCompany: false,
		Permissions: []Permission{
			PermTicketCreate, PermTicketRespond, PermTicketClose, PermTicketReopen, PermTicketRate,
		},
	},
	RoleAgent: {
		Code:            RoleAgent,
		RequiresCompany: true,
		Permissions: []Permission{
			PermTicketRespond, PermTicketResolve, PermTicketClose, PermTicketReopen, PermTicketAssign,
		},
	},
	RoleCompanyAdmin: {
		Code:            RoleCompanyAdmin,
		RequiresCompany: true,
		Permissions: []Permission{
			PermTicketRespond, PermTicketResolve, PermTicketClose, PermTicketReopen,
			PermTicketAssign, PermTicketDelete, PermRoleAssign, PermAnnouncementManage, PermCompanyManage,
		},
	},
	RolePlatformAdmin: {
		Code:            RolePlatformAdmin,
		RequiresCompany: false,
		Permissions: []Permission{
			PermTicketDelete, PermRoleAssign, PermAnnouncementManage, PermCompanyManage,
		},
	},
}

// Catalog order used when deriving role sets.
var roleCodes = []RoleCode{RoleUser, RoleAgent, RoleCompanyAdmin, RolePlatformAdmin}

// RoleByCode looks up catalog reference data for a role code.
func RoleByCode(code RoleCode) (Role, bool) {
	role, ok := roleCatalog[code]
	return role, ok
}

// RolesWithPermission returns the role codes granting any of the given
// permissions, in catalog order. Services derive their required-role
// sets from this instead of hand-maintaining code lists.
func RolesWithPermission(perms ...Permission) []RoleCode {
	var result []RoleCode
	for _, code := range roleCodes {
		role := roleCatalog[code]
		for _, p := range perms {
			if role.HasPermission(p) {
				result = append(result, code)
				break
			}
		}
	}
	return result
}

// HasPermission reports whether the role grants the permission.
func (r Role) HasPermission(p Permission) bool {
	for _, perm := range r.Permissions {
		if perm == p {
			return true
		}
	}
	return false
}
