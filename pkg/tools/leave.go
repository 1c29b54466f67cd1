package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

// resolveEmpCode picks the target employee for a record-scoped tool. An
// empty argument means the actor themselves. Actors without view_all_data
// may only target themselves unless exempt (e.g. managers reading leave
// they can approve).
func resolveEmpCode(args map[string]any, actor domain.Actor, guard *rbac.Guard, exemptPerm string) (string, error) {
	empCode := optStringArg(args, "emp_code")
	if empCode == "" {
		if actor.EmpCode == "" {
			return "", fmt.Errorf("no emp_code given and none linked to your account")
		}
		return actor.EmpCode, nil
	}
	if empCode == actor.EmpCode {
		return empCode, nil
	}
	if guard.Authorize(actor.Role, rbac.PermViewAllData) {
		return empCode, nil
	}
	if exemptPerm != "" && guard.Authorize(actor.Role, exemptPerm) {
		return empCode, nil
	}
	return "", fmt.Errorf("you can only view your own records")
}

func leaveTools(leave store.LeaveStore, guard *rbac.Guard) []Definition {
	return []Definition{
		{
			Name:        "get_leave_records",
			Description: "Leave requests for an employee, newest first. Omit emp_code for your own records.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"status": {"type": "string", "enum": ["pending", "approved", "rejected"]}
				}
			}`),
			Permission: rbac.PermViewLeave,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				// Managers may read leave they are able to decide.
				empCode, err := resolveEmpCode(args, actor, guard, rbac.PermApproveLeave)
				if err != nil {
					return nil, err
				}
				return leave.ListLeave(ctx, empCode, optStringArg(args, "status"))
			},
		},
		{
			Name:        "apply_leave",
			Description: "Submit a leave request. Omit emp_code to apply for yourself.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"leave_type": {"type": "string", "enum": ["casual", "sick", "earned"]},
					"start_date": {"type": "string", "description": "YYYY-MM-DD"},
					"end_date": {"type": "string", "description": "YYYY-MM-DD"},
					"reason": {"type": "string"}
				},
				"required": ["leave_type", "start_date", "end_date"]
			}`),
			Permission: rbac.PermApplyLeave,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := resolveEmpCode(args, actor, guard, "")
				if err != nil {
					return nil, err
				}
				rec := &domain.LeaveRecord{
					ID:        uuid.NewString(),
					EmpCode:   empCode,
					LeaveType: optStringArg(args, "leave_type"),
					Status:    "pending",
					Reason:    optStringArg(args, "reason"),
				}
				if rec.StartDate, err = stringArg(args, "start_date"); err != nil {
					return nil, err
				}
				if rec.EndDate, err = stringArg(args, "end_date"); err != nil {
					return nil, err
				}
				if rec.EndDate < rec.StartDate {
					return nil, fmt.Errorf("end_date %s is before start_date %s", rec.EndDate, rec.StartDate)
				}
				if err := leave.CreateLeave(ctx, rec); err != nil {
					return nil, fmt.Errorf("apply leave: %w", err)
				}
				return rec, nil
			},
		},
		{
			Name:        "approve_or_reject_leave",
			Description: "Decide a pending leave request, identified by emp_code and start_date.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"start_date": {"type": "string", "description": "YYYY-MM-DD"},
					"decision": {"type": "string", "enum": ["approved", "rejected"]}
				},
				"required": ["emp_code", "start_date", "decision"]
			}`),
			Permission: rbac.PermApproveLeave,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := stringArg(args, "emp_code")
				if err != nil {
					return nil, err
				}
				startDate, err := stringArg(args, "start_date")
				if err != nil {
					return nil, err
				}
				decision, err := stringArg(args, "decision")
				if err != nil {
					return nil, err
				}
				if empCode == actor.EmpCode {
					return nil, fmt.Errorf("you cannot decide your own leave request")
				}
				rec, err := leave.DecideLeave(ctx, empCode, startDate, decision, actor.ID)
				if err != nil {
					return nil, err
				}
				return rec, nil
			},
		},
	}
}
