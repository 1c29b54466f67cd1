// Package model abstracts the LLM provider the orchestrator talks to.
package model

import (
	"context"
	"encoding/json"

	"github.com/opshr/hrdesk/pkg/domain"
)

// Message represents a message in the model's conversation context.
type Message struct {
	// Role indicates the sender (user, assistant, tool).
	Role domain.ChatRole
	// Content holds the message parts.
	Content []Content
}

// Content represents a single component of a message.
type Content struct {
	Type string // "text", "tool_call", "tool_result"

	// Text content (when Type == "text").
	Text string `json:"text,omitempty"`

	// Tool call (when Type == "tool_call").
	ToolCall *domain.ToolCall `json:"tool_call,omitempty"`

	// Tool result (when Type == "tool_result").
	ToolResult *domain.ToolResult `json:"tool_result,omitempty"`
}

// Text builds a plain text message.
func Text(role domain.ChatRole, text string) Message {
	return Message{Role: role, Content: []Content{{Type: domain.ContentTypeText, Text: text}}}
}

// ToolSpec declares one callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters json.RawMessage
}

// Provider represents a service that provides LLMs (e.g. Gemini).
type Provider interface {
	// Name returns the provider's identifier (e.g. "gemini").
	Name() string

	// Complete sends a conversation context to the LLM and returns its full
	// response: text, tool calls, or both.
	// modelName identifies which model to use (e.g. "gemini-2.0-flash").
	// instructions is the system prompt; tools are the callable tools.
	Complete(ctx context.Context, modelName, instructions string, tools []ToolSpec, messages []Message) (Message, error)
}

// TextOf concatenates a message's text parts.
func TextOf(msg Message) string {
	var out string
	for _, c := range msg.Content {
		if c.Type == domain.ContentTypeText {
			out += c.Text
		}
	}
	return out
}

// ToolCallsOf extracts a message's tool calls in order.
func ToolCallsOf(msg Message) []domain.ToolCall {
	var calls []domain.ToolCall
	for _, c := range msg.Content {
		if c.Type == domain.ContentTypeToolCall && c.ToolCall != nil {
			calls = append(calls, *c.ToolCall)
		}
	}
	return calls
}
