package gemini

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// jsonSchema is the subset of JSON Schema the tool catalog uses.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*jsonSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *jsonSchema            `json:"items,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
	Minimum     *float64               `json:"minimum,omitempty"`
	Maximum     *float64               `json:"maximum,omitempty"`
}

// schemaFromJSON converts a JSON-schema document into the genai schema the
// function-calling API expects.
func schemaFromJSON(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("parse parameter schema: %w", err)
	}
	return convertSchema(&js)
}

func convertSchema(js *jsonSchema) (*genai.Schema, error) {
	if js == nil {
		return nil, nil
	}
	out := &genai.Schema{
		Description: js.Description,
		Required:    js.Required,
		Enum:        js.Enum,
		Minimum:     js.Minimum,
		Maximum:     js.Maximum,
	}
	switch js.Type {
	case "object", "":
		out.Type = genai.TypeObject
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	default:
		return nil, fmt.Errorf("unsupported schema type: %q", js.Type)
	}

	if len(js.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(js.Properties))
		for name, prop := range js.Properties {
			converted, err := convertSchema(prop)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = converted
		}
	}
	if js.Items != nil {
		items, err := convertSchema(js.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}
	return out, nil
}
