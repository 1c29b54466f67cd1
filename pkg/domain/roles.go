package domain

import "fmt"

// Role is an authenticated user's RBAC role.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleHRAdmin    Role = "hr_admin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleHRAdmin, RoleManager, RoleEmployee:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// ChatRole identifies the sender of a conversation turn.
type ChatRole string

const (
	// ChatRoleUser indicates a message from the user.
	ChatRoleUser ChatRole = "user"
	// ChatRoleAssistant indicates a message from the model.
	ChatRoleAssistant ChatRole = "assistant"
	// ChatRoleTool indicates a tool result.
	ChatRoleTool ChatRole = "tool"
)

// Message content types.
const (
	ContentTypeText       = "text"
	ContentTypeToolCall   = "tool_call"
	ContentTypeToolResult = "tool_result"
)
