package sqlbuilder

import (
	"fmt"
	"regexp"
	"strings"
)

// numericValue matches pivot values that should be emitted bare (no
// quoting); everything else is treated as a string literal.
var numericValue = regexp.MustCompile(`^[0-9]+$`)

// nonWord replaces anything that cannot appear in a bare column alias.
var nonWord = regexp.MustCompile(`\W+`)

// BuildPivot wraps sourceQuery in a PIVOT clause over pivotColumn for the
// given values. Each value is classified numeric (bare) or string
// (single-quoted, with embedded quotes escaped by doubling); the alias
// for each pivoted column is derived by replacing non-word characters
// with underscores.
//
// sourceQuery must already be the SQLText of a Plan produced by another
// builder (or a caller-constructed query passed through
// ValidateSingleStatement) — BuildPivot does not re-validate its shape,
// only wraps it.
func BuildPivot(sourceQuery, pivotColumn string, values []string) (Plan, error) {
	pivotCol, err := EscapeIdentifier(pivotColumn)
	if err != nil {
		return Plan{}, err
	}

	clauses := make([]string, 0, len(values))
	for _, v := range values {
		literal := formatPivotValue(v)
		alias := aliasFor(v)
		clauses = append(clauses, fmt.Sprintf("%s AS %s", literal, alias))
	}

	sqlText := fmt.Sprintf(
		"SELECT * FROM (%s) PIVOT (COUNT(*) FOR %s IN (%s))",
		sourceQuery, pivotCol, strings.Join(clauses, ", "),
	)
	return Plan{SQLText: sqlText}, nil
}

func formatPivotValue(v string) string {
	if numericValue.MatchString(v) {
		return v
	}
	escaped := strings.ReplaceAll(v, "'", "''")
	return "'" + escaped + "'"
}

func aliasFor(v string) string {
	alias := nonWord.ReplaceAllString(v, "_")
	alias = strings.Trim(alias, "_")
	if alias == "" {
		alias = "COL"
	}
	return alias
}
