package mcpserver

import (
	"fmt"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
)

func unsupportedFeature(tag dialect.Tag) error {
	return errtax.New(errtax.KindCapability, "E_UNSUPPORTED_FEATURE", fmt.Sprintf("this operation requires Oracle capability %q, which the connected instance does not report", tag))
}

// argString reads a required string argument, already type-checked by the
// Argument Validator.
func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// argStringOr reads an optional string argument, returning def if absent.
func argStringOr(args map[string]any, name, def string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// argStringSlice reads a required []string argument from a validated
// []any (each element already coerced to string by the Argument
// Validator's array item schema).
func argStringSlice(args map[string]any, name string) []string {
	raw, _ := args[name].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argInt64Or(args map[string]any, name string, def int64) int64 {
	if v, ok := args[name]; ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return def
}

func argBoolOr(args map[string]any, name string, def bool) bool {
	if v, ok := args[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func argFloat64Slice(args map[string]any, name string) []float64 {
	raw, _ := args[name].([]any)
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, n)
		case int64:
			out = append(out, float64(n))
		}
	}
	return out
}
