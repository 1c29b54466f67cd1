package tools

import (
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

// Stores bundles the repositories the tool handlers operate on.
type Stores struct {
	Employees  store.EmployeeStore
	Leave      store.LeaveStore
	Attendance store.AttendanceStore
	Payroll    store.PayrollStore
	Users      store.UserStore
}

// Catalog returns the full HR tool set. The guard is consulted by handlers
// that scope record access to the requesting employee.
func Catalog(s Stores, guard *rbac.Guard) []Definition {
	defs := employeeTools(s.Employees)
	defs = append(defs, leaveTools(s.Leave, guard)...)
	defs = append(defs, attendanceTools(s.Attendance, guard)...)
	defs = append(defs, payrollTools(s.Payroll, guard)...)
	defs = append(defs, userTools(s.Users)...)
	return defs
}
