// Package store defines the persistence interfaces the rest of the system
// consumes. A single SQLite store (pkg/store/sqlite) implements all of
// them; tests may substitute narrower fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/opshr/hrdesk/pkg/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CompanyStats is the aggregate view returned by the get_company_stats tool.
type CompanyStats struct {
	TotalEmployees int            `json:"total_employees"`
	Departments    map[string]int `json:"departments"`
	AverageSalary  float64        `json:"average_salary"`
}

// EmployeeStore manages employee profiles.
type EmployeeStore interface {
	// CreateEmployee persists a new employee. Fails if the emp_code is taken.
	CreateEmployee(ctx context.Context, emp *domain.Employee) error

	// GetEmployee retrieves an employee by emp_code.
	// Returns ErrNotFound if absent.
	GetEmployee(ctx context.Context, empCode string) (*domain.Employee, error)

	// SearchEmployees finds employees by exact emp_code or partial name match.
	SearchEmployees(ctx context.Context, query string) ([]domain.Employee, error)

	// ListByDepartment returns all employees in a department.
	ListByDepartment(ctx context.Context, department string) ([]domain.Employee, error)

	// ListEmployees returns one page of active employees plus the total
	// count. search filters by name, emp_code, department, or designation.
	ListEmployees(ctx context.Context, page, pageSize int, search string) ([]domain.Employee, int, error)

	// UpdateEmployee persists changes to an existing employee.
	// Returns ErrNotFound if the emp_code does not exist.
	UpdateEmployee(ctx context.Context, emp *domain.Employee) error

	// CompanyStats returns headcount, department breakdown, and average
	// salary across active employees.
	CompanyStats(ctx context.Context) (*CompanyStats, error)
}

// LeaveStore manages leave requests.
type LeaveStore interface {
	// CreateLeave persists a new leave request. ID and AppliedAt are set by
	// the caller.
	CreateLeave(ctx context.Context, rec *domain.LeaveRecord) error

	// ListLeave returns leave records for an employee, newest first.
	// status filters when non-empty.
	ListLeave(ctx context.Context, empCode, status string) ([]domain.LeaveRecord, error)

	// DecideLeave sets the status of the pending leave identified by
	// emp_code + start_date and records who decided it. Returns the updated
	// record, or ErrNotFound when no pending leave matches.
	DecideLeave(ctx context.Context, empCode, startDate, status, decidedBy string) (*domain.LeaveRecord, error)
}

// AttendanceStore manages daily attendance records.
type AttendanceStore interface {
	// RecordAttendance upserts the attendance row for (emp_code, date).
	RecordAttendance(ctx context.Context, att *domain.Attendance) error

	// ListAttendance returns attendance for an employee, newest first.
	// date filters to a single day when non-empty.
	ListAttendance(ctx context.Context, empCode, date string) ([]domain.Attendance, error)
}

// PayrollStore manages monthly salary slips.
type PayrollStore interface {
	// CreatePayroll persists a payroll row for (emp_code, month).
	CreatePayroll(ctx context.Context, p *domain.Payroll) error

	// ListPayroll returns payroll rows for an employee, newest month first.
	// month filters to a single slip when non-empty.
	ListPayroll(ctx context.Context, empCode, month string) ([]domain.Payroll, error)
}

// UserStore manages login-identity→role links for the assign_role tool.
type UserStore interface {
	// UpsertUser creates or replaces a user account row.
	UpsertUser(ctx context.Context, u *domain.UserAccount) error

	// GetUser retrieves a user by email. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, email string) (*domain.UserAccount, error)

	// SetUserRole changes an existing user's role.
	// Returns ErrNotFound if the email is unknown.
	SetUserRole(ctx context.Context, email string, role domain.Role) error
}

// CacheStore persists response-cache entries. TTL semantics (treating
// expired rows as absent) live in pkg/cache; this layer is plain storage.
type CacheStore interface {
	// PutCached upserts the entry for its key.
	PutCached(ctx context.Context, entry *domain.CachedReply) error

	// GetCached returns the entry for a key, or nil if absent.
	GetCached(ctx context.Context, key string) (*domain.CachedReply, error)

	// ClearCache removes every cache entry unconditionally.
	ClearCache(ctx context.Context) error
}

// AuditStore persists the append-only audit trail. Entries are never
// updated or deleted; insertion order is the canonical order.
type AuditStore interface {
	// AppendAudit writes one entry. The write is synchronous and atomic:
	// when it returns nil the entry is durable.
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error

	// ListAudit returns entries in insertion order. If limit > 0, returns
	// the most recent entries, still oldest-first.
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// SessionStore persists per-session conversation turns.
type SessionStore interface {
	// AppendTurn adds a turn to the end of a session's history.
	AppendTurn(ctx context.Context, turn *domain.Turn) error

	// GetTurns returns up to limit of the most recent turns for a session
	// (oldest-first), skipping turns created before the since cutoff.
	GetTurns(ctx context.Context, sessionID string, limit int, since time.Time) ([]domain.Turn, error)

	// ClearSession drops all turns for a session.
	ClearSession(ctx context.Context, sessionID string) error
}
