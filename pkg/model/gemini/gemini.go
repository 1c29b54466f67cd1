// Package gemini implements model.Provider using the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/model"
)

// Provider implements model.Provider using the Google Gen AI SDK.
type Provider struct {
	client *genai.Client
}

// Verify interface compliance.
var _ model.Provider = (*Provider)(nil)

// New creates a new Gemini provider.
func New(ctx context.Context, apiKey string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Provider{client: client}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "gemini" }

// Complete sends a conversation context to the LLM and returns the full
// response.
func (p *Provider) Complete(ctx context.Context, modelName, instructions string, tools []model.ToolSpec, messages []model.Message) (model.Message, error) {
	slog.Debug("Gemini.Complete", "model", modelName, "messageCount", len(messages))

	declarations, err := buildToolDeclarations(tools)
	if err != nil {
		return model.Message{}, err
	}

	var systemInstruction *genai.Content
	if instructions != "" {
		systemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: instructions}},
		}
	}

	// Convert messages to genai.Content.
	var contents []*genai.Content
	toolNameMap := make(map[string]string) // tool call ID -> name

	for _, msg := range messages {
		var parts []*genai.Part
		for _, c := range msg.Content {
			switch c.Type {
			case domain.ContentTypeText:
				parts = append(parts, &genai.Part{Text: c.Text})
			case domain.ContentTypeToolCall:
				if c.ToolCall != nil {
					toolNameMap[c.ToolCall.ID] = c.ToolCall.Name
					parts = append(parts, &genai.Part{
						FunctionCall: &genai.FunctionCall{
							Name: c.ToolCall.Name,
							Args: c.ToolCall.Input,
							ID:   c.ToolCall.ID,
						},
					})
				}
			case domain.ContentTypeToolResult:
				if c.ToolResult != nil {
					response := map[string]any{"result": c.ToolResult.Content}
					if c.ToolResult.IsError {
						response = map[string]any{"error": c.ToolResult.Content}
					}
					parts = append(parts, &genai.Part{
						FunctionResponse: &genai.FunctionResponse{
							Name:     toolNameMap[c.ToolResult.ToolCallID],
							ID:       c.ToolResult.ToolCallID,
							Response: response,
						},
					})
				}
			}
		}

		role := "user"
		if msg.Role == domain.ChatRoleAssistant {
			role = "model"
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{
				Role:  role,
				Parts: parts,
			})
		}
	}

	config := &genai.GenerateContentConfig{
		Tools:             declarations,
		SystemInstruction: systemInstruction,
	}

	resp, err := p.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return model.Message{}, fmt.Errorf("generate content: %w", err)
	}

	var fullText strings.Builder
	var toolCalls []model.Content
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				fullText.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				fc := part.FunctionCall
				id := fc.ID
				if id == "" {
					id = "call-" + uuid.New().String()
				}
				toolCalls = append(toolCalls, model.Content{
					Type: domain.ContentTypeToolCall,
					ToolCall: &domain.ToolCall{
						ID:    id,
						Name:  fc.Name,
						Input: fc.Args,
					},
				})
			}
		}
	}

	var content []model.Content
	if fullText.Len() > 0 {
		content = append(content, model.Content{
			Type: domain.ContentTypeText,
			Text: fullText.String(),
		})
	}
	content = append(content, toolCalls...)

	return model.Message{
		Role:    domain.ChatRoleAssistant,
		Content: content,
	}, nil
}

func buildToolDeclarations(tools []model.ToolSpec) ([]*genai.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	var decls []*genai.FunctionDeclaration
	for _, t := range tools {
		params, err := schemaFromJSON(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}
