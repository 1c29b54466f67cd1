package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshr/hrdesk/pkg/audit"
	"github.com/opshr/hrdesk/pkg/cache"
	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/faq"
	"github.com/opshr/hrdesk/pkg/model"
	"github.com/opshr/hrdesk/pkg/normalize"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/session"
	"github.com/opshr/hrdesk/pkg/store/sqlite"
	"github.com/opshr/hrdesk/pkg/tools"
)

// stubProvider replays a scripted sequence of responses. Once the script is
// exhausted the last response repeats, so a tool-calling response can
// simulate a model that never produces final text.
type stubProvider struct {
	script       []model.Message
	err          error
	calls        int
	lastMessages []model.Message
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, modelName, instructions string, specs []model.ToolSpec, messages []model.Message) (model.Message, error) {
	s.calls++
	s.lastMessages = messages
	if s.err != nil {
		return model.Message{}, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	return s.script[idx], nil
}

func textMsg(text string) model.Message {
	return model.Text(domain.ChatRoleAssistant, text)
}

func toolCallMsg(name string, args map[string]any) model.Message {
	return model.Message{
		Role: domain.ChatRoleAssistant,
		Content: []model.Content{{
			Type:     domain.ContentTypeToolCall,
			ToolCall: &domain.ToolCall{ID: "call-1", Name: name, Input: args},
		}},
	}
}

type fixture struct {
	agent *Agent
	store *sqlite.Store
	cache *cache.Cache
	audit *audit.Recorder
}

func newFixture(t *testing.T, provider model.Provider, extraDefs ...tools.Definition) *fixture {
	t.Helper()
	s, err := sqlite.New(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	guard := rbac.NewGuard(nil)
	defs := tools.Catalog(tools.Stores{Employees: s, Leave: s, Attendance: s, Payroll: s, Users: s}, guard)
	defs = append(defs, extraDefs...)
	registry, err := tools.NewRegistry(defs)
	require.NoError(t, err)

	matcher, err := faq.New(faq.Defaults())
	require.NoError(t, err)

	c := cache.New(s, time.Minute)
	recorder := audit.NewRecorder(s)
	sessions := session.NewManager(s, 0, 0)

	a := New(provider, registry, guard, matcher, c, sessions, recorder,
		Options{ModelName: "test-model", MaxToolRounds: 4})
	return &fixture{agent: a, store: s, cache: c, audit: recorder}
}

var (
	hrAdmin  = domain.Actor{ID: "hr1", Role: domain.RoleHRAdmin, EmpCode: "EMP900"}
	employee = domain.Actor{ID: "u1", Role: domain.RoleEmployee, EmpCode: "EMP001"}
)

func addEmployeeArgs(code string) map[string]any {
	return map[string]any{
		"emp_code":        code,
		"name":            "Dev Mehta",
		"email":           code + "@example.com",
		"department":      "Engineering",
		"designation":     "Engineer",
		"date_of_joining": "2024-01-15",
		"salary":          800000.0,
	}
}

func TestFAQShortCircuit(t *testing.T) {
	provider := &stubProvider{script: []model.Message{textMsg("should not be called")}}
	f := newFixture(t, provider)
	ctx := context.Background()

	res, err := f.agent.Resolve(ctx, "What is the leave policy?", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, "faq", res.Source)
	assert.Contains(t, res.Reply, "Casual Leave")
	assert.Zero(t, provider.calls)

	// No cache entry was created for the FAQ answer.
	key := normalize.Key(string(employee.Role), "What is the leave policy?")
	hit, err := f.cache.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestCacheHitSkipsModel(t *testing.T) {
	provider := &stubProvider{script: []model.Message{textMsg("EMP001 has 8 days of leave left.")}}
	f := newFixture(t, provider)
	ctx := context.Background()

	first, err := f.agent.Resolve(ctx, "how much leave does EMP001 have left", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, "model", first.Source)
	assert.Equal(t, 1, provider.calls)

	// Same intent, different wording noise: normalization makes it the same
	// key, so the model is not consulted again.
	second, err := f.agent.Resolve(ctx, "How much LEAVE does EMP001 have left?!", "sess-2", employee)
	require.NoError(t, err)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, 1, provider.calls)
}

func TestCacheScopedByRole(t *testing.T) {
	provider := &stubProvider{script: []model.Message{textMsg("answer")}}
	f := newFixture(t, provider)
	ctx := context.Background()

	_, err := f.agent.Resolve(ctx, "list engineering employees", "sess-1", hrAdmin)
	require.NoError(t, err)
	_, err = f.agent.Resolve(ctx, "list engineering employees", "sess-2", employee)
	require.NoError(t, err)

	// An answer computed for hr_admin must not be served to an employee.
	assert.Equal(t, 2, provider.calls)
}

func TestMutationAuditsAndInvalidates(t *testing.T) {
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("add_employee", addEmployeeArgs("EMP010")),
		textMsg("Created EMP010."),
	}}
	f := newFixture(t, provider)
	ctx := context.Background()

	// Seed an unrelated cache entry that the mutation must wipe.
	unrelatedKey := normalize.Key("employee", "what are the office hours")
	require.NoError(t, f.cache.Store(ctx, unrelatedKey, "what are the office hours", "9 to 6", ""))

	res, err := f.agent.Resolve(ctx, "add Dev Mehta as EMP010", "sess-1", hrAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Created EMP010.", res.Reply)
	assert.Equal(t, "add_employee", res.ToolUsed)

	// Exactly one audit entry, recording actor, tool, and arguments.
	entries, err := f.audit.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "add_employee", entries[0].Tool)
	assert.Equal(t, "hr1", entries[0].ActorID)
	assert.Equal(t, domain.OutcomeSuccess, entries[0].Outcome)
	assert.Contains(t, entries[0].Arguments, "EMP010")

	// The unrelated entry is gone; the final reply itself is cached because
	// it is stored after invalidation.
	hit, err := f.cache.Lookup(ctx, unrelatedKey)
	require.NoError(t, err)
	assert.Nil(t, hit)
	finalKey := normalize.Key(string(hrAdmin.Role), "add Dev Mehta as EMP010")
	hit, err = f.cache.Lookup(ctx, finalKey)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Created EMP010.", hit.Reply)

	// And the mutation actually landed.
	emp, err := f.store.GetEmployee(ctx, "EMP010")
	require.NoError(t, err)
	assert.Equal(t, "Dev Mehta", emp.Name)
}

func TestPermissionDenied(t *testing.T) {
	handlerCalls := 0
	counting := tools.Definition{
		Name:        "approve_leave_probe",
		Description: "test-only mutating tool gated on approve_leave",
		Parameters:  []byte(`{"type": "object", "properties": {}}`),
		Permission:  rbac.PermApproveLeave,
		Mutating:    true,
		Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
			handlerCalls++
			return "ok", nil
		},
	}
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("approve_leave_probe", map[string]any{}),
	}}
	f := newFixture(t, provider, counting)
	ctx := context.Background()

	unrelatedKey := normalize.Key("employee", "unrelated")
	require.NoError(t, f.cache.Store(ctx, unrelatedKey, "unrelated", "cached", ""))

	res, err := f.agent.Resolve(ctx, "approve my own leave please", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, deniedReply, res.Reply)
	assert.Empty(t, res.ToolUsed)

	// The handler never ran and the audit trail is untouched.
	assert.Zero(t, handlerCalls)
	entries, err := f.audit.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Cache untouched: nothing invalidated, nothing written.
	hit, err := f.cache.Lookup(ctx, unrelatedKey)
	require.NoError(t, err)
	require.NotNil(t, hit)
	deniedKey := normalize.Key(string(employee.Role), "approve my own leave please")
	hit, err = f.cache.Lookup(ctx, deniedKey)
	require.NoError(t, err)
	assert.Nil(t, hit)

	// Only one model call was consumed before the denial.
	assert.Equal(t, 1, provider.calls)
}

func TestDeniedScenarioApproveLeave(t *testing.T) {
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("approve_or_reject_leave", map[string]any{
			"emp_code": "EMP002", "start_date": "2026-09-01", "decision": "approved",
		}),
	}}
	f := newFixture(t, provider)

	res, err := f.agent.Resolve(context.Background(), "approve EMP002's leave", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, deniedReply, res.Reply)

	entries, err := f.audit.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoopBound(t *testing.T) {
	// The stub keeps requesting a valid tool call forever.
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("get_company_stats", map[string]any{}),
	}}
	f := newFixture(t, provider)

	res, err := f.agent.Resolve(context.Background(), "how many employees do we have", "sess-1", hrAdmin)
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, res.Reply)
	assert.Equal(t, 4, provider.calls)
}

func TestUnknownToolFedBack(t *testing.T) {
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("fire_everyone", map[string]any{}),
		textMsg("That tool does not exist; here is what I can do instead."),
	}}
	f := newFixture(t, provider)

	res, err := f.agent.Resolve(context.Background(), "fire everyone", "sess-1", hrAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Contains(t, res.Reply, "what I can do instead")

	// The second model call saw the error tool result.
	last := provider.lastMessages[len(provider.lastMessages)-1]
	require.Len(t, last.Content, 1)
	require.NotNil(t, last.Content[0].ToolResult)
	assert.True(t, last.Content[0].ToolResult.IsError)
	assert.Contains(t, last.Content[0].ToolResult.Content, "unknown tool")
}

func TestValidationErrorFedBack(t *testing.T) {
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("add_employee", map[string]any{"emp_code": "EMP010"}), // missing required fields
		textMsg("I need more details to add an employee."),
	}}
	f := newFixture(t, provider)
	ctx := context.Background()

	res, err := f.agent.Resolve(ctx, "add EMP010", "sess-1", hrAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
	assert.Contains(t, res.Reply, "more details")

	// Invalid arguments never execute, so nothing was audited.
	entries, err := f.audit.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandlerFailureAuditedNotInvalidated(t *testing.T) {
	provider := &stubProvider{script: []model.Message{
		toolCallMsg("assign_role", map[string]any{"email": "nobody@example.com", "role": "manager"}),
		textMsg("There is no account for nobody@example.com."),
	}}
	f := newFixture(t, provider)
	ctx := context.Background()
	superAdmin := domain.Actor{ID: "root", Role: domain.RoleSuperAdmin}

	unrelatedKey := normalize.Key("employee", "unrelated")
	require.NoError(t, f.cache.Store(ctx, unrelatedKey, "unrelated", "cached", ""))

	res, err := f.agent.Resolve(ctx, "make nobody@example.com a manager", "sess-1", superAdmin)
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "no account")
	assert.Empty(t, res.ToolUsed)

	// The attempted mutation is audited as a failure.
	entries, err := f.audit.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OutcomeFailure, entries[0].Outcome)

	// Nothing changed, so the cache survives.
	hit, err := f.cache.Lookup(ctx, unrelatedKey)
	require.NoError(t, err)
	assert.NotNil(t, hit)
}

func TestModelUnavailable(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream timeout")}
	f := newFixture(t, provider)
	ctx := context.Background()

	res, err := f.agent.Resolve(ctx, "who is EMP001", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, unavailableReply, res.Reply)

	// A failed resolution is never cached.
	key := normalize.Key(string(employee.Role), "who is EMP001")
	hit, err := f.cache.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestEmptyModelReplyFallsBack(t *testing.T) {
	provider := &stubProvider{script: []model.Message{{Role: domain.ChatRoleAssistant}}}
	f := newFixture(t, provider)

	res, err := f.agent.Resolve(context.Background(), "hmm", "sess-1", employee)
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, res.Reply)
}

func TestHistoryCarriedIntoModel(t *testing.T) {
	provider := &stubProvider{script: []model.Message{textMsg("answer one"), textMsg("answer two")}}
	f := newFixture(t, provider)
	ctx := context.Background()

	_, err := f.agent.Resolve(ctx, "first question", "sess-1", employee)
	require.NoError(t, err)
	_, err = f.agent.Resolve(ctx, "second question", "sess-1", employee)
	require.NoError(t, err)

	// Second call sees: first question, answer one, second question.
	require.Len(t, provider.lastMessages, 3)
	assert.Equal(t, "first question", model.TextOf(provider.lastMessages[0]))
	assert.Equal(t, "answer one", model.TextOf(provider.lastMessages[1]))
	assert.Equal(t, "second question", model.TextOf(provider.lastMessages[2]))
}
