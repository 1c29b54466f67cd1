package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opshr/hrdesk/pkg/domain"
)

func TestDefaultMatrix(t *testing.T) {
	g := NewGuard(nil)

	cases := []struct {
		role       domain.Role
		permission string
		allowed    bool
	}{
		{domain.RoleEmployee, PermApplyLeave, true},
		{domain.RoleEmployee, PermApproveLeave, false},
		{domain.RoleEmployee, PermManageEmployee, false},
		{domain.RoleEmployee, PermViewAllData, false},
		{domain.RoleManager, PermApproveLeave, true},
		{domain.RoleManager, PermManageEmployee, false},
		{domain.RoleHRAdmin, PermManageEmployee, true},
		{domain.RoleHRAdmin, PermManageRoles, false},
		{domain.RoleHRAdmin, PermViewAllData, true},
		{domain.RoleSuperAdmin, PermManageRoles, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, g.Authorize(c.role, c.permission),
			"role=%s permission=%s", c.role, c.permission)
	}
}

func TestEmptyPermissionIsOpen(t *testing.T) {
	g := NewGuard(nil)
	assert.True(t, g.Authorize(domain.RoleEmployee, ""))
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	g := NewGuard(nil)
	assert.False(t, g.Authorize(domain.Role("contractor"), PermViewEmployee))
}

func TestPermissionsSorted(t *testing.T) {
	g := NewGuard(map[domain.Role][]string{
		domain.RoleEmployee: {"b", "a", "c"},
	})
	assert.Equal(t, []string{"a", "b", "c"}, g.Permissions(domain.RoleEmployee))
}
