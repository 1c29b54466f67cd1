package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/store"
)

func userTools(users store.UserStore) []Definition {
	return []Definition{
		{
			Name:        "assign_role",
			Description: "Change the role of an existing user account, identified by email.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"email": {"type": "string"},
					"role": {"type": "string", "enum": ["super_admin", "hr_admin", "manager", "employee"]}
				},
				"required": ["email", "role"]
			}`),
			Permission: rbac.PermManageRoles,
			Mutating:   true,
			Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
				email, err := stringArg(args, "email")
				if err != nil {
					return nil, err
				}
				roleStr, err := stringArg(args, "role")
				if err != nil {
					return nil, err
				}
				role, err := domain.ParseRole(roleStr)
				if err != nil {
					return nil, err
				}
				if err := users.SetUserRole(ctx, email, role); err != nil {
					return nil, fmt.Errorf("assign role to %s: %w", email, err)
				}
				u, err := users.GetUser(ctx, email)
				if err != nil {
					return nil, err
				}
				return u, nil
			},
		},
	}
}
