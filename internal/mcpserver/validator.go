package mcpserver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// ValidationResult carries the coerced argument map plus any non-fatal
// warnings (lenient unknown-field handling), surfaced in the response
// envelope's metadata.
type ValidationResult struct {
	Args     map[string]any
	Warnings []string
}

// Validate enforces a tool's JSON-schema contract against raw request
// arguments: required properties, type coercion, and enum/range/pattern
// constraints (spec.md §4.6). schema is the map produced by
// generateInputSchema.
func Validate(schema map[string]any, strict bool, raw map[string]any) (*ValidationResult, error) {
	props, _ := schema["properties"].(map[string]any)
	required := stringSet(schema["required"])

	result := &ValidationResult{Args: make(map[string]any, len(raw))}

	for name := range required {
		if _, ok := raw[name]; !ok {
			return nil, errtax.New(errtax.KindValidation, "E_MISSING_PARAM", fmt.Sprintf("missing required parameter %q", name))
		}
	}

	for name, value := range raw {
		propSchema, known := props[name].(map[string]any)
		if !known {
			if strict {
				return nil, errtax.New(errtax.KindValidation, "E_UNKNOWN_PARAM", fmt.Sprintf("unexpected parameter %q", name))
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("ignored unknown parameter %q", name))
			continue
		}

		coerced, err := coerceAndValidate(name, value, propSchema)
		if err != nil {
			return nil, err
		}
		result.Args[name] = coerced
	}

	return result, nil
}

func coerceAndValidate(name string, value any, propSchema map[string]any) (any, error) {
	typ, _ := propSchema["type"].(string)

	switch typ {
	case "integer":
		n, err := toInt64(value)
		if err != nil {
			return nil, badParam(name, "expected an integer")
		}
		if err := checkRange(name, float64(n), propSchema); err != nil {
			return nil, err
		}
		return n, nil

	case "number":
		n, err := toFloat64(value)
		if err != nil {
			return nil, badParam(name, "expected a number")
		}
		if err := checkRange(name, n, propSchema); err != nil {
			return nil, err
		}
		return n, nil

	case "boolean":
		b, err := toBool(value)
		if err != nil {
			return nil, badParam(name, "expected a boolean")
		}
		return b, nil

	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, badParam(name, "expected a string")
		}
		if err := checkEnum(name, s, propSchema); err != nil {
			return nil, err
		}
		if err := checkStringLength(name, s, propSchema); err != nil {
			return nil, err
		}
		if pattern, ok := propSchema["pattern"].(string); ok {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, errtax.New(errtax.KindInternal, "E_INVALID_SCHEMA", fmt.Sprintf("invalid pattern on %q", name))
			}
			if !re.MatchString(s) {
				return nil, badParam(name, fmt.Sprintf("does not match pattern %q", pattern))
			}
		}
		return s, nil

	case "array":
		items, ok := value.([]any)
		if !ok {
			return nil, badParam(name, "expected an array")
		}
		itemSchema, _ := propSchema["items"].(map[string]any)
		if itemSchema == nil {
			return items, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			coerced, err := coerceAndValidate(fmt.Sprintf("%s[%d]", name, i), item, itemSchema)
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil

	default:
		// object or untyped: accepted as-is, nested validation is the
		// handler's responsibility.
		return value, nil
	}
}

func checkEnum(name, s string, propSchema map[string]any) error {
	enumVals, ok := propSchema["enum"].([]any)
	if !ok {
		return nil
	}
	for _, v := range enumVals {
		if sv, ok := v.(string); ok && sv == s {
			return nil
		}
	}
	return badParam(name, fmt.Sprintf("must be one of %v", enumVals))
}

func checkStringLength(name, s string, propSchema map[string]any) error {
	if minLen, ok := numberField(propSchema, "minLength"); ok && float64(len(s)) < minLen {
		return badParam(name, fmt.Sprintf("must be at least %d characters", int(minLen)))
	}
	if maxLen, ok := numberField(propSchema, "maxLength"); ok && float64(len(s)) > maxLen {
		return badParam(name, fmt.Sprintf("must be at most %d characters", int(maxLen)))
	}
	return nil
}

func checkRange(name string, n float64, propSchema map[string]any) error {
	if min, ok := numberField(propSchema, "minimum"); ok && n < min {
		return badParam(name, fmt.Sprintf("must be >= %v", min))
	}
	if max, ok := numberField(propSchema, "maximum"); ok && n > max {
		return badParam(name, fmt.Sprintf("must be <= %v", max))
	}
	return nil
}

func numberField(schema map[string]any, key string) (float64, bool) {
	v, ok := schema[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func badParam(name, reason string) error {
	return errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q %s", name, reason))
}

func stringSet(v any) map[string]struct{} {
	out := make(map[string]struct{})
	items, _ := v.([]any)
	for _, item := range items {
		if s, ok := item.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean string: %s", t)
	case float64:
		if t == 0 {
			return false, nil
		}
		if t == 1 {
			return true, nil
		}
		return false, fmt.Errorf("not a boolean number: %v", t)
	default:
		return false, fmt.Errorf("unsupported type %T", v)
	}
}
