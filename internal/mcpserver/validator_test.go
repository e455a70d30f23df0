package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

func schemaWith(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{"type": "object", "properties": props, "required": req}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	schema := schemaWith(map[string]any{
		"table": map[string]any{"type": "string"},
	}, "table")

	_, err := Validate(schema, true, map[string]any{})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_MISSING_PARAM", et.Code)
	assert.Contains(t, et.Message, "table")
}

func TestValidateStrictRejectsUnknownField(t *testing.T) {
	schema := schemaWith(map[string]any{
		"table": map[string]any{"type": "string"},
	})

	_, err := Validate(schema, true, map[string]any{"tabel": "employees"})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_UNKNOWN_PARAM", et.Code)
}

func TestValidateLenientWarnsOnUnknownField(t *testing.T) {
	schema := schemaWith(map[string]any{
		"table": map[string]any{"type": "string"},
	})

	vr, err := Validate(schema, false, map[string]any{"table": "employees", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, "employees", vr.Args["table"])
	assert.NotContains(t, vr.Args, "extra")
	require.Len(t, vr.Warnings, 1)
	assert.Contains(t, vr.Warnings[0], "extra")
}

func TestValidateCoercesNumericStrings(t *testing.T) {
	schema := schemaWith(map[string]any{
		"limit": map[string]any{"type": "integer"},
		"ratio": map[string]any{"type": "number"},
	})

	vr, err := Validate(schema, true, map[string]any{"limit": "42", "ratio": "0.5"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), vr.Args["limit"])
	assert.Equal(t, 0.5, vr.Args["ratio"])
}

func TestValidateCoercesBooleanForms(t *testing.T) {
	schema := schemaWith(map[string]any{
		"cascade": map[string]any{"type": "boolean"},
	})

	for raw, want := range map[any]bool{"true": true, "FALSE": false, "1": true, "0": false, float64(1): true} {
		vr, err := Validate(schema, true, map[string]any{"cascade": raw})
		require.NoError(t, err, raw)
		assert.Equal(t, want, vr.Args["cascade"], raw)
	}

	_, err := Validate(schema, true, map[string]any{"cascade": "maybe"})
	require.Error(t, err)
}

func TestValidateEnforcesEnum(t *testing.T) {
	schema := schemaWith(map[string]any{
		"metric": map[string]any{"type": "string", "enum": []any{"cosine", "euclidean"}},
	})

	vr, err := Validate(schema, true, map[string]any{"metric": "cosine"})
	require.NoError(t, err)
	assert.Equal(t, "cosine", vr.Args["metric"])

	_, err = Validate(schema, true, map[string]any{"metric": "hamming"})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindValidation, et.Kind)
}

func TestValidateEnforcesRange(t *testing.T) {
	schema := schemaWith(map[string]any{
		"top_k": map[string]any{"type": "integer", "minimum": float64(1), "maximum": float64(100)},
	})

	_, err := Validate(schema, true, map[string]any{"top_k": float64(0)})
	require.Error(t, err)
	_, err = Validate(schema, true, map[string]any{"top_k": float64(101)})
	require.Error(t, err)

	vr, err := Validate(schema, true, map[string]any{"top_k": float64(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), vr.Args["top_k"])
}

func TestValidateEnforcesPattern(t *testing.T) {
	schema := schemaWith(map[string]any{
		"name": map[string]any{"type": "string", "pattern": "^[a-z_]+$"},
	})

	_, err := Validate(schema, true, map[string]any{"name": "Mixed Case"})
	require.Error(t, err)

	vr, err := Validate(schema, true, map[string]any{"name": "lower_case"})
	require.NoError(t, err)
	assert.Equal(t, "lower_case", vr.Args["name"])
}

func TestValidateCoercesArrayItems(t *testing.T) {
	schema := schemaWith(map[string]any{
		"limits": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
	})

	vr, err := Validate(schema, true, map[string]any{"limits": []any{"1", float64(2)}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, vr.Args["limits"])

	_, err = Validate(schema, true, map[string]any{"limits": []any{"not-a-number"}})
	require.Error(t, err)
}

func TestValidateRejectsWrongTypes(t *testing.T) {
	schema := schemaWith(map[string]any{
		"table": map[string]any{"type": "string"},
	})

	_, err := Validate(schema, true, map[string]any{"table": float64(3)})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_INVALID_PARAM", et.Code)
}
