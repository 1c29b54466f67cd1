package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

func employeeTools(employees store.EmployeeStore) []Definition {
	return []Definition{
		{
			Name:        "lookup_employee",
			Description: "Find an employee by emp_code or by (partial) name. Returns matching profiles.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"identifier": {"type": "string", "description": "emp_code like EMP001, or a name fragment"}
				},
				"required": ["identifier"]
			}`),
			Permission: rbac.PermViewEmployee,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				identifier, err := stringArg(args, "identifier")
				if err != nil {
					return nil, err
				}
				matches, err := employees.SearchEmployees(ctx, identifier)
				if err != nil {
					return nil, err
				}
				if len(matches) == 0 {
					return nil, fmt.Errorf("no employee matches %q", identifier)
				}
				return matches, nil
			},
		},
		{
			Name:        "list_employees_by_department",
			Description: "List active employees in a department.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"department": {"type": "string"}
				},
				"required": ["department"]
			}`),
			Permission: rbac.PermViewEmployee,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				department, err := stringArg(args, "department")
				if err != nil {
					return nil, err
				}
				return employees.ListByDepartment(ctx, department)
			},
		},
		{
			Name:        "list_all_employees",
			Description: "List all active employees, paginated, optionally filtered by a search term.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"page": {"type": "integer", "minimum": 1},
					"page_size": {"type": "integer", "minimum": 1, "maximum": 25},
					"search": {"type": "string"}
				}
			}`),
			Permission: rbac.PermViewAllData,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				page := optIntArg(args, "page", 1)
				pageSize := optIntArg(args, "page_size", 10)
				emps, total, err := employees.ListEmployees(ctx, page, pageSize, optStringArg(args, "search"))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"employees": emps,
					"total":     total,
					"page":      page,
					"page_size": pageSize,
				}, nil
			},
		},
		{
			Name:        "get_company_stats",
			Description: "Company-wide headcount, per-department counts, and average salary.",
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
			Permission:  rbac.PermViewEmployee,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				return employees.CompanyStats(ctx)
			},
		},
		{
			Name:        "add_employee",
			Description: "Create a new employee profile.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"name": {"type": "string"},
					"email": {"type": "string"},
					"department": {"type": "string"},
					"designation": {"type": "string"},
					"date_of_joining": {"type": "string", "description": "YYYY-MM-DD"},
					"salary": {"type": "number", "minimum": 0},
					"manager_name": {"type": "string"}
				},
				"required": ["emp_code", "name", "email", "department", "designation", "date_of_joining", "salary"]
			}`),
			Permission: rbac.PermManageEmployee,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				emp := &domain.Employee{Status: "active"}
				var err error
				if emp.EmpCode, err = stringArg(args, "emp_code"); err != nil {
					return nil, err
				}
				if emp.Name, err = stringArg(args, "name"); err != nil {
					return nil, err
				}
				if emp.Email, err = stringArg(args, "email"); err != nil {
					return nil, err
				}
				if emp.Department, err = stringArg(args, "department"); err != nil {
					return nil, err
				}
				if emp.Designation, err = stringArg(args, "designation"); err != nil {
					return nil, err
				}
				if emp.DateOfJoining, err = stringArg(args, "date_of_joining"); err != nil {
					return nil, err
				}
				if emp.Salary, err = floatArg(args, "salary"); err != nil {
					return nil, err
				}
				emp.ManagerName = optStringArg(args, "manager_name")
				if err := employees.CreateEmployee(ctx, emp); err != nil {
					return nil, fmt.Errorf("create employee %s: %w", emp.EmpCode, err)
				}
				return emp, nil
			},
		},
		{
			Name:        "update_employee",
			Description: "Update fields of an existing employee profile. Only the provided fields change.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"name": {"type": "string"},
					"email": {"type": "string"},
					"department": {"type": "string"},
					"designation": {"type": "string"},
					"salary": {"type": "number", "minimum": 0},
					"manager_name": {"type": "string"}
				},
				"required": ["emp_code"]
			}`),
			Permission: rbac.PermManageEmployee,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := stringArg(args, "emp_code")
				if err != nil {
					return nil, err
				}
				emp, err := employees.GetEmployee(ctx, empCode)
				if err != nil {
					return nil, err
				}
				if v, ok := args["name"].(string); ok {
					emp.Name = v
				}
				if v, ok := args["email"].(string); ok {
					emp.Email = v
				}
				if v, ok := args["department"].(string); ok {
					emp.Department = v
				}
				if v, ok := args["designation"].(string); ok {
					emp.Designation = v
				}
				if v, ok := args["salary"].(float64); ok {
					emp.Salary = v
				}
				if v, ok := args["manager_name"].(string); ok {
					emp.ManagerName = v
				}
				if err := employees.UpdateEmployee(ctx, emp); err != nil {
					return nil, err
				}
				return emp, nil
			},
		},
		{
			Name:        "initiate_resignation",
			Description: "Mark an employee as resigned with a last working date.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"emp_code": {"type": "string"},
					"last_working_date": {"type": "string", "description": "YYYY-MM-DD"},
					"reason": {"type": "string"}
				},
				"required": ["emp_code", "last_working_date"]
			}`),
			Permission: rbac.PermManageEmployee,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				empCode, err := stringArg(args, "emp_code")
				if err != nil {
					return nil, err
				}
				lastDay, err := stringArg(args, "last_working_date")
				if err != nil {
					return nil, err
				}
				emp, err := employees.GetEmployee(ctx, empCode)
				if err != nil {
					return nil, err
				}
				if emp.Status != "active" {
					return nil, fmt.Errorf("employee %s is not active (status: %s)", empCode, emp.Status)
				}
				emp.Status = "resigned"
				emp.LastWorkingAt = lastDay
				emp.ExitReason = optStringArg(args, "reason")
				if err := employees.UpdateEmployee(ctx, emp); err != nil {
					return nil, err
				}
				return emp, nil
			},
		},
	}
}
