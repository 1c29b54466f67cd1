package tools

import (
	"context"
	"encoding/json"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

func payrollTools(payroll store.PayrollStore, guard *rbac.Guard) []Definition {
	return []Definition{
		{
			Name:        "get_payroll",
			Description: "Monthly salary slips for an employee, newest month first. Omit emp_code for your own; month narrows to one slip.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"month": {"type": "string", "description": "YYYY-MM"}
				}
			}`),
			Permission: rbac.PermViewPayroll,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := resolveEmpCode(args, actor, guard, "")
				if err != nil {
					return nil, err
				}
				return payroll.ListPayroll(ctx, empCode, optStringArg(args, "month"))
			},
		},
	}
}
