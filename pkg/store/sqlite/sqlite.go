// Package sqlite implements every pkg/store interface on a single SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/store"
)

// Store implements the persistence interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Verify interface compliance at compile time.
var _ store.EmployeeStore = (*Store)(nil)
var _ store.LeaveStore = (*Store)(nil)
var _ store.AttendanceStore = (*Store)(nil)
var _ store.PayrollStore = (*Store)(nil)
var _ store.UserStore = (*Store)(nil)
var _ store.CacheStore = (*Store)(nil)
var _ store.AuditStore = (*Store)(nil)
var _ store.SessionStore = (*Store)(nil)

// New opens (or creates) a SQLite database at the given path and runs
// migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		emp_code TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		department TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT '',
		date_of_joining TEXT NOT NULL DEFAULT '',
		salary REAL NOT NULL DEFAULT 0,
		manager_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		exit_reason TEXT NOT NULL DEFAULT '',
		last_working_date TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_employees_department ON employees(department);

	CREATE TABLE IF NOT EXISTS leave_records (
		id TEXT PRIMARY KEY,
		emp_code TEXT NOT NULL,
		leave_type TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT NOT NULL DEFAULT '',
		approved_by TEXT NOT NULL DEFAULT '',
		applied_on DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_leave_emp ON leave_records(emp_code);

	CREATE TABLE IF NOT EXISTS attendance (
		emp_code TEXT NOT NULL,
		date TEXT NOT NULL,
		check_in TEXT NOT NULL DEFAULT '',
		check_out TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'present',
		PRIMARY KEY (emp_code, date)
	);

	CREATE TABLE IF NOT EXISTS payroll (
		emp_code TEXT NOT NULL,
		month TEXT NOT NULL,
		basic REAL NOT NULL DEFAULT 0,
		hra REAL NOT NULL DEFAULT 0,
		allowances REAL NOT NULL DEFAULT 0,
		deductions REAL NOT NULL DEFAULT 0,
		net_pay REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (emp_code, month)
	);

	CREATE TABLE IF NOT EXISTS users (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'employee',
		emp_code TEXT NOT NULL DEFAULT '',
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		query TEXT NOT NULL DEFAULT '',
		reply TEXT NOT NULL DEFAULT '',
		tool_used TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS audit_entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		actor_id TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		tool TEXT NOT NULL DEFAULT '',
		arguments TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON session_turns(session_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- EmployeeStore ---

const employeeCols = `emp_code, name, email, department, designation, date_of_joining,
	salary, manager_name, status, exit_reason, last_working_date, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*domain.Employee, error) {
	emp := &domain.Employee{}
	err := row.Scan(&emp.EmpCode, &emp.Name, &emp.Email, &emp.Department, &emp.Designation,
		&emp.DateOfJoining, &emp.Salary, &emp.ManagerName, &emp.Status,
		&emp.ExitReason, &emp.LastWorkingAt, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func (s *Store) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	now := time.Now().UTC()
	emp.CreatedAt = now
	emp.UpdatedAt = now
	if emp.Status == "" {
		emp.Status = "active"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (`+employeeCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		emp.EmpCode, emp.Name, emp.Email, emp.Department, emp.Designation,
		emp.DateOfJoining, emp.Salary, emp.ManagerName, emp.Status,
		emp.ExitReason, emp.LastWorkingAt, emp.CreatedAt, emp.UpdatedAt,
	)
	return err
}

func (s *Store) GetEmployee(ctx context.Context, empCode string) (*domain.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE emp_code = ?`, empCode)
	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("employee %s: %w", empCode, store.ErrNotFound)
	}
	return emp, err
}

func (s *Store) SearchEmployees(ctx context.Context, query string) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeCols+` FROM employees
		 WHERE emp_code = ? OR name LIKE '%' || ? || '%'
		 ORDER BY emp_code`, query, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (s *Store) ListByDepartment(ctx context.Context, department string) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeCols+` FROM employees
		 WHERE department = ? COLLATE NOCASE AND status = 'active'
		 ORDER BY emp_code`, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (s *Store) ListEmployees(ctx context.Context, page, pageSize int, search string) ([]domain.Employee, int, error) {
	if page < 1 {
		page = 1
	}
	where := `WHERE status = 'active'`
	var args []any
	if search != "" {
		where += ` AND (name LIKE '%' || ? || '%' OR emp_code LIKE '%' || ? || '%'
			OR department LIKE '%' || ? || '%' OR designation LIKE '%' || ? || '%')`
		args = append(args, search, search, search, search)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeCols+` FROM employees `+where+` ORDER BY emp_code LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	emps, err := collectEmployees(rows)
	return emps, total, err
}

func (s *Store) UpdateEmployee(ctx context.Context, emp *domain.Employee) error {
	emp.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE employees SET name=?, email=?, department=?, designation=?, date_of_joining=?,
		 salary=?, manager_name=?, status=?, exit_reason=?, last_working_date=?, updated_at=?
		 WHERE emp_code=?`,
		emp.Name, emp.Email, emp.Department, emp.Designation, emp.DateOfJoining,
		emp.Salary, emp.ManagerName, emp.Status, emp.ExitReason, emp.LastWorkingAt,
		emp.UpdatedAt, emp.EmpCode,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("employee %s: %w", emp.EmpCode, store.ErrNotFound)
	}
	return nil
}

func (s *Store) CompanyStats(ctx context.Context) (*store.CompanyStats, error) {
	stats := &store.CompanyStats{Departments: map[string]int{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(salary), 0) FROM employees WHERE status = 'active'`,
	).Scan(&stats.TotalEmployees, &stats.AverageSalary)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT department, COUNT(*) FROM employees WHERE status = 'active' GROUP BY department`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		var n int
		if err := rows.Scan(&dept, &n); err != nil {
			return nil, err
		}
		stats.Departments[dept] = n
	}
	return stats, rows.Err()
}

func collectEmployees(rows *sql.Rows) ([]domain.Employee, error) {
	var emps []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, *emp)
	}
	return emps, rows.Err()
}

// --- LeaveStore ---

func (s *Store) CreateLeave(ctx context.Context, rec *domain.LeaveRecord) error {
	if rec.AppliedAt.IsZero() {
		rec.AppliedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = "pending"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_records (id, emp_code, leave_type, start_date, end_date, status, reason, approved_by, applied_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EmpCode, rec.LeaveType, rec.StartDate, rec.EndDate,
		rec.Status, rec.Reason, rec.ApprovedBy, rec.AppliedAt,
	)
	return err
}

func (s *Store) ListLeave(ctx context.Context, empCode, status string) ([]domain.LeaveRecord, error) {
	query := `SELECT id, emp_code, leave_type, start_date, end_date, status, reason, approved_by, applied_on
		FROM leave_records WHERE emp_code = ?`
	args := []any{empCode}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY applied_on DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.LeaveRecord
	for rows.Next() {
		var r domain.LeaveRecord
		if err := rows.Scan(&r.ID, &r.EmpCode, &r.LeaveType, &r.StartDate, &r.EndDate,
			&r.Status, &r.Reason, &r.ApprovedBy, &r.AppliedAt); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *Store) DecideLeave(ctx context.Context, empCode, startDate, status, decidedBy string) (*domain.LeaveRecord, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE leave_records SET status=?, approved_by=?
		 WHERE emp_code=? AND start_date=? AND status='pending'`,
		status, decidedBy, empCode, startDate,
	)
	if err != nil {
		return nil, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("pending leave for %s starting %s: %w", empCode, startDate, store.ErrNotFound)
	}

	rec := &domain.LeaveRecord{}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, emp_code, leave_type, start_date, end_date, status, reason, approved_by, applied_on
		 FROM leave_records WHERE emp_code=? AND start_date=? AND status=?`,
		empCode, startDate, status,
	).Scan(&rec.ID, &rec.EmpCode, &rec.LeaveType, &rec.StartDate, &rec.EndDate,
		&rec.Status, &rec.Reason, &rec.ApprovedBy, &rec.AppliedAt)
	return rec, err
}

// --- AttendanceStore ---

func (s *Store) RecordAttendance(ctx context.Context, att *domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (emp_code, date, check_in, check_out, status)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(emp_code, date) DO UPDATE SET check_in=excluded.check_in,
			check_out=excluded.check_out, status=excluded.status`,
		att.EmpCode, att.Date, att.CheckIn, att.CheckOut, att.Status,
	)
	return err
}

func (s *Store) ListAttendance(ctx context.Context, empCode, date string) ([]domain.Attendance, error) {
	query := `SELECT emp_code, date, check_in, check_out, status FROM attendance WHERE emp_code = ?`
	args := []any{empCode}
	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []domain.Attendance
	for rows.Next() {
		var a domain.Attendance
		if err := rows.Scan(&a.EmpCode, &a.Date, &a.CheckIn, &a.CheckOut, &a.Status); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

// --- PayrollStore ---

func (s *Store) CreatePayroll(ctx context.Context, p *domain.Payroll) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payroll (emp_code, month, basic, hra, allowances, deductions, net_pay)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.EmpCode, p.Month, p.Basic, p.HRA, p.Allowances, p.Deductions, p.NetPay,
	)
	return err
}

func (s *Store) ListPayroll(ctx context.Context, empCode, month string) ([]domain.Payroll, error) {
	query := `SELECT emp_code, month, basic, hra, allowances, deductions, net_pay
		FROM payroll WHERE emp_code = ?`
	args := []any{empCode}
	if month != "" {
		query += ` AND month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY month DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slips []domain.Payroll
	for rows.Next() {
		var p domain.Payroll
		if err := rows.Scan(&p.EmpCode, &p.Month, &p.Basic, &p.HRA, &p.Allowances,
			&p.Deductions, &p.NetPay); err != nil {
			return nil, err
		}
		slips = append(slips, p)
	}
	return slips, rows.Err()
}

// --- UserStore ---

func (s *Store) UpsertUser(ctx context.Context, u *domain.UserAccount) error {
	u.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, role, emp_code, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET name=excluded.name, role=excluded.role,
			emp_code=excluded.emp_code, updated_at=excluded.updated_at`,
		u.Email, u.Name, u.Role, u.EmpCode, u.UpdatedAt,
	)
	return err
}

func (s *Store) GetUser(ctx context.Context, email string) (*domain.UserAccount, error) {
	u := &domain.UserAccount{}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, role, emp_code, updated_at FROM users WHERE email = ?`, email,
	).Scan(&u.Email, &u.Name, &u.Role, &u.EmpCode, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}
	return u, err
}

func (s *Store) SetUserRole(ctx context.Context, email string, role domain.Role) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET role=?, updated_at=? WHERE email=?`,
		role, time.Now().UTC(), email,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %s: %w", email, store.ErrNotFound)
	}
	return nil
}

// --- CacheStore ---

func (s *Store) PutCached(ctx context.Context, entry *domain.CachedReply) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, query, reply, tool_used, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET query=excluded.query, reply=excluded.reply,
			tool_used=excluded.tool_used, created_at=excluded.created_at, expires_at=excluded.expires_at`,
		entry.Key, entry.Query, entry.Reply, entry.ToolUsed, entry.CreatedAt, entry.ExpiresAt,
	)
	return err
}

func (s *Store) GetCached(ctx context.Context, key string) (*domain.CachedReply, error) {
	entry := &domain.CachedReply{}
	err := s.db.QueryRowContext(ctx,
		`SELECT key, query, reply, tool_used, created_at, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&entry.Key, &entry.Query, &entry.Reply, &entry.ToolUsed, &entry.CreatedAt, &entry.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Store) ClearCache(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

// --- AuditStore ---

func (s *Store) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, actor_id, actor_role, tool, arguments, outcome, summary, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ActorID, entry.ActorRole, entry.Tool,
		entry.Arguments, entry.Outcome, entry.Summary, entry.Timestamp,
	)
	if err != nil {
		return err
	}
	entry.Seq, _ = result.LastInsertId()
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	query := `SELECT seq, id, actor_id, actor_role, tool, arguments, outcome, summary, timestamp
		FROM audit_entries ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		// Most recent N, returned oldest-first.
		query = `SELECT seq, id, actor_id, actor_role, tool, arguments, outcome, summary, timestamp FROM (
			SELECT seq, id, actor_id, actor_role, tool, arguments, outcome, summary, timestamp
			FROM audit_entries ORDER BY seq DESC LIMIT ?
		) sub ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.Seq, &e.ID, &e.ActorID, &e.ActorRole, &e.Tool,
			&e.Arguments, &e.Outcome, &e.Summary, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- SessionStore ---

func (s *Store) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_turns (session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		turn.SessionID, turn.Role, turn.Content, turn.CreatedAt,
	)
	return err
}

func (s *Store) GetTurns(ctx context.Context, sessionID string, limit int, since time.Time) ([]domain.Turn, error) {
	query := `SELECT session_id, role, content, created_at
		FROM session_turns WHERE session_id = ? AND created_at >= ? ORDER BY seq ASC`
	args := []any{sessionID, since}
	if limit > 0 {
		// Most recent N of the window, returned oldest-first.
		query = `SELECT session_id, role, content, created_at FROM (
			SELECT session_id, role, content, created_at, seq
			FROM session_turns WHERE session_id = ? AND created_at >= ? ORDER BY seq DESC LIMIT ?
		) sub ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		if err := rows.Scan(&t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_turns WHERE session_id = ?`, sessionID)
	return err
}
