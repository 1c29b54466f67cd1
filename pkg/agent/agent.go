// Package agent implements the request-resolution pipeline: one inbound
// chat message becomes a final reply via the FAQ table, the response cache,
// or a bounded model/tool loop with permission checks and audit logging.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opshr/hrdesk/pkg/audit"
	"github.com/opshr/hrdesk/pkg/cache"
	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/faq"
	"github.com/opshr/hrdesk/pkg/model"
	"github.com/opshr/hrdesk/pkg/normalize"
	"github.com/opshr/hrdesk/pkg/rbac"
	"github.com/opshr/hrdesk/pkg/session"
	"github.com/opshr/hrdesk/pkg/tools"
)

// DefaultMaxToolRounds bounds the model/tool loop per request.
const DefaultMaxToolRounds = 8

// Fixed user-facing messages for terminal states.
const (
	fallbackReply    = "I'm sorry, I wasn't able to complete your request. Please try rephrasing or simplifying your question."
	deniedReply      = "You don't have permission to perform that action."
	unavailableReply = "The assistant is temporarily unavailable. Please try again in a moment."
)

// Resolution is the outcome of one resolved chat message.
type Resolution struct {
	Reply    string `json:"reply"`
	ToolUsed string `json:"tool_used,omitempty"`
	// Source reports which layer produced the reply: "faq", "cache", or
	// "model".
	Source string `json:"source"`
}

// Agent composes the FAQ table, response cache, permission guard, tool
// registry, audit recorder, and session history into one resolution
// pipeline. All collaborators are fixed at construction.
type Agent struct {
	provider model.Provider
	registry *tools.Registry
	guard    *rbac.Guard
	faq      *faq.Matcher
	cache    *cache.Cache
	sessions *session.Manager
	audit    *audit.Recorder

	modelName    string
	maxRounds    int
	modelTimeout time.Duration
}

// Options tunes the agent. Zero values select defaults.
type Options struct {
	ModelName     string
	MaxToolRounds int
	ModelTimeout  time.Duration
}

// New builds an agent over the given collaborators.
func New(provider model.Provider, registry *tools.Registry, guard *rbac.Guard,
	matcher *faq.Matcher, c *cache.Cache, sessions *session.Manager,
	recorder *audit.Recorder, opts Options) *Agent {
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = DefaultMaxToolRounds
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = time.Minute
	}
	return &Agent{
		provider:     provider,
		registry:     registry,
		guard:        guard,
		faq:          matcher,
		cache:        c,
		sessions:     sessions,
		audit:        recorder,
		modelName:    opts.ModelName,
		maxRounds:    opts.MaxToolRounds,
		modelTimeout: opts.ModelTimeout,
	}
}

// Resolve turns one inbound chat message into a final reply. It is the sole
// entry point the chat endpoint calls.
func (a *Agent) Resolve(ctx context.Context, message, sessionID string, actor domain.Actor) (*Resolution, error) {
	// Static FAQ answers bypass everything: no cache write, no model call.
	if answer := a.faq.Match(message); answer != "" {
		if err := a.sessions.AppendExchange(ctx, sessionID, message, answer); err != nil {
			return nil, err
		}
		return &Resolution{Reply: answer, Source: "faq"}, nil
	}

	// Cache keys are scoped by role so an answer computed under one
	// permission set is never served under another.
	cacheKey := normalize.Key(string(actor.Role), message)
	if hit, err := a.cache.Lookup(ctx, cacheKey); err != nil {
		return nil, err
	} else if hit != nil {
		slog.Debug("cache hit", "session", sessionID, "key", cacheKey)
		if err := a.sessions.AppendExchange(ctx, sessionID, message, hit.Reply); err != nil {
			return nil, err
		}
		return &Resolution{Reply: hit.Reply, ToolUsed: hit.ToolUsed, Source: "cache"}, nil
	}

	res, err := a.runModelLoop(ctx, message, sessionID, actor, cacheKey)
	if err != nil {
		return nil, err
	}
	if err := a.sessions.AppendExchange(ctx, sessionID, message, res.Reply); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *Agent) runModelLoop(ctx context.Context, message, sessionID string, actor domain.Actor, cacheKey string) (*Resolution, error) {
	history, err := a.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conversation := make([]model.Message, 0, len(history)+1)
	for _, turn := range history {
		conversation = append(conversation, model.Text(turn.Role, turn.Content))
	}
	conversation = append(conversation, model.Text(domain.ChatRoleUser, message))

	instructions := a.systemPrompt(actor)
	catalog := a.toolSpecs()
	toolUsed := ""

	for round := 0; round < a.maxRounds; round++ {
		resp, err := a.callModel(ctx, instructions, catalog, conversation)
		if err != nil {
			slog.Error("model call failed", "session", sessionID, "error", err)
			return &Resolution{Reply: unavailableReply, Source: "model"}, nil
		}

		calls := model.ToolCallsOf(resp)
		if len(calls) == 0 {
			reply := model.TextOf(resp)
			if reply == "" {
				return &Resolution{Reply: fallbackReply, Source: "model"}, nil
			}
			// The final reply is cached after any mutation already cleared
			// the cache, so it survives its own invalidation.
			if err := a.cache.Store(ctx, cacheKey, normalize.Normalize(message), reply, toolUsed); err != nil {
				return nil, err
			}
			return &Resolution{Reply: reply, ToolUsed: toolUsed, Source: "model"}, nil
		}

		conversation = append(conversation, resp)

		var results []model.Content
		for _, call := range calls {
			outcome, denied, err := a.invokeTool(ctx, call, actor)
			if err != nil {
				return nil, err
			}
			if denied {
				return &Resolution{Reply: deniedReply, Source: "model"}, nil
			}
			if !outcome.IsError {
				if def, rerr := a.registry.Resolve(call.Name); rerr == nil {
					toolUsed = def.Name
				}
			}
			results = append(results, model.Content{
				Type:       domain.ContentTypeToolResult,
				ToolResult: outcome,
			})
		}
		conversation = append(conversation, model.Message{
			Role:    domain.ChatRoleTool,
			Content: results,
		})
	}

	slog.Warn("tool round limit reached", "session", sessionID, "rounds", a.maxRounds)
	return &Resolution{Reply: fallbackReply, Source: "model"}, nil
}

// invokeTool runs one requested tool call through resolution, permission
// check, validation, execution, and (for mutations) audit plus cache
// invalidation. denied=true short-circuits the request; a non-nil error is
// fatal for the request.
func (a *Agent) invokeTool(ctx context.Context, call domain.ToolCall, actor domain.Actor) (outcome *domain.ToolResult, denied bool, err error) {
	def, err := a.registry.Resolve(call.Name)
	if err != nil {
		if errors.Is(err, tools.ErrUnknownTool) {
			// Model-protocol error: feed it back so the model can correct
			// itself within the round bound.
			return errResult(call.ID, err), false, nil
		}
		return nil, false, err
	}

	// The permission check happens exactly once, immediately before the
	// handler. Denials never reach the handler and never touch the audit
	// trail; they are logged at the observability layer only.
	if !a.guard.Authorize(actor.Role, def.Permission) {
		slog.Warn("tool denied",
			"tool", def.Name, "actor", actor.ID, "role", actor.Role)
		return nil, true, nil
	}

	if err := a.registry.Validate(call.Name, call.Input); err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			return errResult(call.ID, verr), false, nil
		}
		return nil, false, err
	}

	result, handlerErr := def.Handler(ctx, call.Input, actor)

	if def.Mutating {
		auditOutcome := domain.OutcomeSuccess
		summary := fmt.Sprintf("%s executed", def.Name)
		if handlerErr != nil {
			auditOutcome = domain.OutcomeFailure
			summary = handlerErr.Error()
		}
		// The audit write must land before this request proceeds. A failed
		// append is fatal: the mutation must not be reported as complete
		// without its audit record.
		if _, err := a.audit.Record(ctx, actor, def.Name, call.Input, auditOutcome, summary); err != nil {
			return nil, false, err
		}
		if handlerErr == nil {
			// Any successful write may stale any cached answer.
			if err := a.cache.InvalidateAll(ctx); err != nil {
				return nil, false, err
			}
		}
	}

	if handlerErr != nil {
		return errResult(call.ID, handlerErr), false, nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, false, fmt.Errorf("marshal %s result: %w", def.Name, err)
	}
	return &domain.ToolResult{ToolCallID: call.ID, Content: string(payload)}, false, nil
}

func (a *Agent) callModel(ctx context.Context, instructions string, catalog []model.ToolSpec, conversation []model.Message) (model.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.modelTimeout)
	defer cancel()
	return a.provider.Complete(callCtx, a.modelName, instructions, catalog, conversation)
}

func (a *Agent) toolSpecs() []model.ToolSpec {
	defs := a.registry.List()
	specs := make([]model.ToolSpec, 0, len(defs))
	for _, def := range defs {
		specs = append(specs, model.ToolSpec{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return specs
}

func errResult(callID string, err error) *domain.ToolResult {
	return &domain.ToolResult{ToolCallID: callID, Content: err.Error(), IsError: true}
}
