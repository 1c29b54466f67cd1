// Package rbac maps roles to permission sets and answers the single
// question the orchestrator asks before invoking any tool handler: may
// this role use this tool?
package rbac

import (
	"sort"

	"github.com/opshr/hrdesk/pkg/domain"
)

// Permissions understood by the tool catalog.
const (
	PermViewEmployee   = "view_employee"
	PermViewLeave      = "view_leave"
	PermApplyLeave     = "apply_leave"
	PermApproveLeave   = "approve_leave"
	PermViewPayroll    = "view_payroll"
	PermViewAttendance = "view_attendance"
	PermManageEmployee = "manage_employee"
	PermManageRoles    = "manage_roles"
	PermViewOwnData    = "view_own_data"
	PermViewAllData    = "view_all_data"
)

// Guard is an immutable role→permission-set mapping, built once at startup
// and passed explicitly into the orchestrator.
type Guard struct {
	perms map[domain.Role]map[string]bool
}

// NewGuard builds a guard from the given mapping. A nil mapping yields the
// default matrix.
func NewGuard(perms map[domain.Role][]string) *Guard {
	if perms == nil {
		perms = DefaultPermissions()
	}
	g := &Guard{perms: make(map[domain.Role]map[string]bool, len(perms))}
	for role, list := range perms {
		set := make(map[string]bool, len(list))
		for _, p := range list {
			set[p] = true
		}
		g.perms[role] = set
	}
	return g
}

// Authorize reports whether the role holds the given permission. An empty
// permission means the tool is open to any authenticated user. Unknown
// roles hold nothing.
func (g *Guard) Authorize(role domain.Role, permission string) bool {
	if permission == "" {
		return true
	}
	return g.perms[role][permission]
}

// Permissions returns the sorted permission list for a role, for the
// system prompt and for introspection endpoints.
func (g *Guard) Permissions(role domain.Role) []string {
	set := g.perms[role]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// DefaultPermissions is the built-in role matrix.
func DefaultPermissions() map[domain.Role][]string {
	return map[domain.Role][]string{
		domain.RoleSuperAdmin: {
			PermViewEmployee, PermViewLeave, PermApplyLeave, PermApproveLeave,
			PermViewPayroll, PermViewAttendance, PermManageEmployee,
			PermManageRoles, PermViewOwnData, PermViewAllData,
		},
		domain.RoleHRAdmin: {
			PermViewEmployee, PermViewLeave, PermApplyLeave, PermApproveLeave,
			PermViewPayroll, PermViewAttendance, PermManageEmployee,
			PermViewOwnData, PermViewAllData,
		},
		domain.RoleManager: {
			PermViewEmployee, PermViewLeave, PermApplyLeave, PermApproveLeave,
			PermViewPayroll, PermViewAttendance, PermViewOwnData,
		},
		domain.RoleEmployee: {
			PermViewEmployee, PermViewLeave, PermApplyLeave,
			PermViewAttendance, PermViewPayroll, PermViewOwnData,
		},
	}
}
