package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshr/hrdesk/pkg/domain"
)

func echoDef(name string) Definition {
	return Definition{
		Name:        name,
		Description: "test tool",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"emp_code": {"type": "string"},
				"count": {"type": "integer", "minimum": 1}
			},
			"required": ["emp_code"]
		}`),
		Handler: func(ctx context.Context, args map[string]any, actor domain.Actor) (any, error) {
			return args, nil
		},
	}
}

func TestResolve(t *testing.T) {
	r, err := NewRegistry([]Definition{echoDef("echo")})
	require.NoError(t, err)

	def, err := r.Resolve("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", def.Name)

	_, err = r.Resolve("nope")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestDuplicateNameRejected(t *testing.T) {
	_, err := NewRegistry([]Definition{echoDef("echo"), echoDef("echo")})
	assert.Error(t, err)
}

func TestInvalidSchemaRejected(t *testing.T) {
	def := echoDef("bad")
	def.Parameters = json.RawMessage(`{"type": 12}`)
	_, err := NewRegistry([]Definition{def})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	r, err := NewRegistry([]Definition{echoDef("echo")})
	require.NoError(t, err)

	assert.NoError(t, r.Validate("echo", map[string]any{"emp_code": "EMP001"}))
	assert.NoError(t, r.Validate("echo", map[string]any{"emp_code": "EMP001", "count": 3}))

	err = r.Validate("echo", map[string]any{"count": 3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "echo", verr.Tool)
	assert.NotEmpty(t, verr.Issues)

	err = r.Validate("echo", map[string]any{"emp_code": "EMP001", "count": 0})
	assert.ErrorAs(t, err, &verr)

	err = r.Validate("echo", nil)
	assert.ErrorAs(t, err, &verr)

	assert.ErrorIs(t, r.Validate("nope", nil), ErrUnknownTool)
}

func TestListSorted(t *testing.T) {
	r, err := NewRegistry([]Definition{echoDef("zeta"), echoDef("alpha")})
	require.NoError(t, err)

	defs := r.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zeta", defs[1].Name)
}
