// Package tools defines the tool catalog the model can call: one
// definition per operation, carrying its JSON-schema parameters, the
// permission it requires, whether it mutates HR data, and its handler.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/opshr/hrdesk/pkg/domain"
)

// ErrUnknownTool is returned when the model requests a tool that is not in
// the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call against HR data. The returned value is
// JSON-serialized into the tool result the model sees.
type Handler func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error)

// Definition describes one callable tool.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters json.RawMessage
	// Permission required to invoke the tool. Empty means open to any
	// authenticated user.
	Permission string
	// Mutating marks tools that write HR data. Successful execution of a
	// mutating tool is audited and invalidates the response cache.
	Mutating bool
	Handler  Handler
}

// ValidationError reports arguments that do not satisfy a tool's schema.
type ValidationError struct {
	Tool   string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Issues, "; "))
}

// Registry is the immutable set of tools available to the orchestrator.
type Registry struct {
	defs    map[string]*Definition
	ordered []*Definition
	schemas map[string]*gojsonschema.Schema
}

// NewRegistry builds a registry, compiling each tool's parameter schema.
// Duplicate names and invalid schemas fail at startup.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:    make(map[string]*Definition, len(defs)),
		schemas: make(map[string]*gojsonschema.Schema, len(defs)),
	}
	for i := range defs {
		def := &defs[i]
		if def.Name == "" {
			return nil, errors.New("tool definition missing name")
		}
		if _, ok := r.defs[def.Name]; ok {
			return nil, fmt.Errorf("duplicate tool: %s", def.Name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(def.Parameters))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", def.Name, err)
		}
		r.defs[def.Name] = def
		r.ordered = append(r.ordered, def)
		r.schemas[def.Name] = schema
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].Name < r.ordered[j].Name })
	return r, nil
}

// Resolve returns the definition for a tool name, or ErrUnknownTool.
func (r *Registry) Resolve(name string) (*Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return def, nil
}

// Validate checks arguments against the tool's parameter schema. Returns a
// *ValidationError when they do not conform.
func (r *Registry) Validate(name string, args map[string]any) error {
	schema, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate %s arguments: %w", name, err)
	}
	if !result.Valid() {
		verr := &ValidationError{Tool: name}
		for _, issue := range result.Errors() {
			verr.Issues = append(verr.Issues, issue.String())
		}
		return verr
	}
	return nil
}

// List returns all definitions sorted by name.
func (r *Registry) List() []*Definition {
	return r.ordered
}
