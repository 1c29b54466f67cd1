package domain

import "time"

// Actor identifies the authenticated user a request is resolved for.
// Identity and role are established upstream (token parsing is not this
// core's job); EmpCode links the actor to an employee record when present.
type Actor struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Role    Role   `json:"role"`
	EmpCode string `json:"emp_code,omitempty"`
}

// Employee is an HR employee profile.
type Employee struct {
	EmpCode       string    `json:"emp_code"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Department    string    `json:"department"`
	Designation   string    `json:"designation"`
	DateOfJoining string    `json:"date_of_joining"` // YYYY-MM-DD
	Salary        float64   `json:"salary"`          // annual CTC
	ManagerName   string    `json:"manager_name,omitempty"`
	Status        string    `json:"status"` // active, resigned, terminated
	ExitReason    string    `json:"exit_reason,omitempty"`
	LastWorkingAt string    `json:"last_working_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LeaveRecord is a leave request or decision for an employee.
type LeaveRecord struct {
	ID         string    `json:"id"`
	EmpCode    string    `json:"emp_code"`
	LeaveType  string    `json:"leave_type"` // casual, sick, earned
	StartDate  string    `json:"start_date"` // YYYY-MM-DD
	EndDate    string    `json:"end_date"`
	Status     string    `json:"status"` // pending, approved, rejected
	Reason     string    `json:"reason,omitempty"`
	ApprovedBy string    `json:"approved_by,omitempty"`
	AppliedAt  time.Time `json:"applied_on"`
}

// Attendance is a daily attendance record.
type Attendance struct {
	EmpCode  string `json:"emp_code"`
	Date     string `json:"date"` // YYYY-MM-DD
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	Status   string `json:"status"` // present, absent, half-day, work-from-home
}

// Payroll is a monthly salary slip.
type Payroll struct {
	EmpCode    string  `json:"emp_code"`
	Month      string  `json:"month"` // YYYY-MM
	Basic      float64 `json:"basic"`
	HRA        float64 `json:"hra"`
	Allowances float64 `json:"allowances"`
	Deductions float64 `json:"deductions"`
	NetPay     float64 `json:"net_pay"`
}

// UserAccount links a login identity to a role. Only the role is mutable
// here (via the assign_role tool); everything else belongs to the auth
// system upstream.
type UserAccount struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	EmpCode   string    `json:"emp_code,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditEntry is one immutable record of an executed mutating tool call.
// Entries are append-only; Seq reflects insertion order.
type AuditEntry struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	ActorID   string    `json:"actor_id"`
	ActorRole Role      `json:"actor_role"`
	Tool      string    `json:"tool"`
	Arguments string    `json:"arguments"` // JSON-serialized tool arguments
	Outcome   string    `json:"outcome"`   // "success" or "failure"
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CachedReply is a previously computed final answer, keyed by the
// role-scoped hash of the normalized query. Expired entries are treated
// as absent by lookups.
type CachedReply struct {
	Key       string    `json:"key"`
	Query     string    `json:"query"` // normalized text the key was derived from
	Reply     string    `json:"reply"`
	ToolUsed  string    `json:"tool_used,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Turn is one entry of a session's bounded conversation history.
type Turn struct {
	SessionID string    `json:"session_id"`
	Role      ChatRole  `json:"role"` // user or assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult is the outcome of a tool call, handed back into the model's
// context for phrasing.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}
