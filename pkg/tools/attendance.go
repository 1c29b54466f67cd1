package tools

import (
	"context"
	"encoding/json"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

func attendanceTools(attendance store.AttendanceStore, guard *rbac.Guard) []Definition {
	return []Definition{
		{
			Name:        "get_attendance",
			Description: "Attendance records for an employee, newest first. Omit emp_code for your own records; date narrows to a single day.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"date": {"type": "string", "description": "YYYY-MM-DD"}
				}
			}`),
			Permission: rbac.PermViewAttendance,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := resolveEmpCode(args, actor, guard, "")
				if err != nil {
					return nil, err
				}
				return attendance.ListAttendance(ctx, empCode, optStringArg(args, "date"))
			},
		},
	}
}
