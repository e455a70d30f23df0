package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// noArgFunctions emit without the argument parenthesis: ROW_NUMBER() OVER
// (...), never ROW_NUMBER(x) OVER (...).
var noArgFunctions = map[string]struct{}{
	"ROW_NUMBER": {}, "RANK": {}, "DENSE_RANK": {},
}

// percentileFunctions require a single numeric parameter and emit it via
// WITHIN GROUP (ORDER BY ...) rather than as a plain call argument.
var percentileFunctions = map[string]struct{}{
	"PERCENTILE_CONT": {}, "PERCENTILE_DISC": {},
}

// BuildAnalytical builds `<fn>([args]) OVER (PARTITION BY ... ORDER BY
// ...)`, applying the no-argument-parens rule for ROW_NUMBER/RANK/
// DENSE_RANK and the WITHIN GROUP rule for PERCENTILE_CONT/DISC.
func BuildAnalytical(table, function string, partitionBy, orderBy []string, parameters []string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}

	fn := strings.ToUpper(strings.TrimSpace(function))

	orderClause, err := buildOrderBy(orderBy)
	if err != nil {
		return Plan{}, err
	}
	partitionClause, err := buildPartitionBy(partitionBy)
	if err != nil {
		return Plan{}, err
	}

	var windowExpr string
	switch {
	case isNoArgFunction(fn):
		if len(parameters) > 0 {
			return Plan{}, errtax.New(errtax.KindDialect, "E_UNEXPECTED_PARAMETER", fmt.Sprintf("%s takes no arguments", fn))
		}
		windowExpr = fn + "()"
	case isPercentileFunction(fn):
		if len(parameters) != 1 {
			return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAMETER", fmt.Sprintf("%s requires exactly one numeric parameter", fn))
		}
		if orderClause == "" {
			return Plan{}, errtax.New(errtax.KindValidation, "E_MISSING_ORDER_BY", fmt.Sprintf("%s requires order_by for its WITHIN GROUP clause", fn))
		}
		windowExpr = fmt.Sprintf("%s(%s) WITHIN GROUP (%s)", fn, parameters[0], orderClause)
	default:
		windowExpr = fmt.Sprintf("%s(%s)", fn, strings.Join(parameters, ", "))
	}

	var over strings.Builder
	over.WriteString(" OVER (")
	parts := []string{}
	if partitionClause != "" {
		parts = append(parts, partitionClause)
	}
	if isPercentileFunction(fn) {
		// WITHIN GROUP already consumed the ORDER BY; the OVER clause
		// for a percentile analytic keeps only the partition, per
		// Oracle's documented PERCENTILE_CONT/DISC analytic syntax.
	} else if orderClause != "" {
		parts = append(parts, orderClause)
	}
	over.WriteString(strings.Join(parts, " "))
	over.WriteString(")")

	sqlText := fmt.Sprintf("SELECT %s%s FROM %s", windowExpr, over.String(), tbl)
	return Plan{SQLText: sqlText}, nil
}

func isNoArgFunction(fn string) bool {
	_, ok := noArgFunctions[fn]
	return ok
}

func isPercentileFunction(fn string) bool {
	_, ok := percentileFunctions[fn]
	return ok
}

func buildOrderBy(cols []string) (string, error) {
	if len(cols) == 0 {
		return "", nil
	}
	escaped := make([]string, 0, len(cols))
	for _, c := range cols {
		entry, err := EscapeOrderByEntry(c)
		if err != nil {
			return "", err
		}
		escaped = append(escaped, entry)
	}
	return "ORDER BY " + strings.Join(escaped, ", "), nil
}

func buildPartitionBy(cols []string) (string, error) {
	if len(cols) == 0 {
		return "", nil
	}
	escaped := make([]string, 0, len(cols))
	for _, c := range cols {
		name, err := EscapeIdentifier(c)
		if err != nil {
			return "", err
		}
		escaped = append(escaped, name)
	}
	return "PARTITION BY " + strings.Join(escaped, ", "), nil
}
