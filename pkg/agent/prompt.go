package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/opshr/hrdesk/pkg/domain"
)

// systemPrompt builds the per-request instructions: who the actor is, what
// their role may do, and how the assistant should behave.
func (a *Agent) systemPrompt(actor domain.Actor) string {
	var b strings.Builder
	b.WriteString("You are an HR assistant for company employees. Answer questions about employees, leave, attendance, and payroll using the available tools.\n\n")

	fmt.Fprintf(&b, "Today's date is %s.\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "You are talking to %s (role: %s", displayName(actor), actor.Role)
	if actor.EmpCode != "" {
		fmt.Fprintf(&b, ", employee code: %s", actor.EmpCode)
	}
	b.WriteString(").\n")

	perms := a.guard.Permissions(actor.Role)
	if len(perms) > 0 {
		fmt.Fprintf(&b, "Their role grants: %s.\n", strings.Join(perms, ", "))
	}

	b.WriteString(`
Guidelines:
- Use tools to fetch real data; never invent employee records, dates, or amounts.
- When the user refers to themselves ("my leave", "my payslip"), omit emp_code so the tool uses their own record.
- Dates are YYYY-MM-DD, months are YYYY-MM.
- Keep replies short and factual. If a tool reports an error, explain it plainly and suggest what to fix.
- Do not promise actions you did not perform with a tool.`)
	return b.String()
}

func displayName(actor domain.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return actor.ID
}
