package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildSelect builds a SELECT over table, escaping every identifier and
// binding where's value-free; where itself is a caller-supplied predicate
// body that has already passed ValidateSingleStatement upstream (it is
// never a raw user string spliced without that check).
func BuildSelect(table string, columns []string, where string, orderBy []string, limit int64) (Plan, error) {
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}

	colList := "*"
	if len(columns) > 0 {
		escaped := make([]string, 0, len(columns))
		for _, c := range columns {
			name, err := EscapeIdentifier(c)
			if err != nil {
				return Plan{}, err
			}
			escaped = append(escaped, name)
		}
		colList = strings.Join(escaped, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", colList, tbl)
	if where != "" {
		clause, err := ValidateSingleStatement(where)
		if err != nil {
			return Plan{}, err
		}
		fmt.Fprintf(&b, " WHERE %s", clause)
	}
	if orderClause, err := buildOrderBy(orderBy); err != nil {
		return Plan{}, err
	} else if orderClause != "" {
		b.WriteString(" ")
		b.WriteString(orderClause)
	}
	if limit > 0 {
		fmt.Fprintf(&b, " FETCH FIRST %d ROWS ONLY", limit)
	}

	return Plan{SQLText: b.String()}, nil
}

// BuildInsert builds an INSERT with one bind parameter per value, in
// values' (unordered) map traversal order captured once into a stable
// column/bind slice pair.
func BuildInsert(table string, values map[string]any) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	if len(values) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_VALUES", "at least one column value is required")
	}

	cols := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	binds := make([]any, 0, len(values))
	i := 1
	for col, val := range values {
		name, err := EscapeIdentifier(col)
		if err != nil {
			return Plan{}, err
		}
		cols = append(cols, name)
		placeholders = append(placeholders, fmt.Sprintf(":%d", i))
		binds = append(binds, val)
		i++
	}

	sqlText := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return Plan{SQLText: sqlText, Binds: binds}, nil
}

// BuildUpdate builds an UPDATE statement. where is required — an
// unconditional update is never emitted, per spec.md's bulk-mutation
// safety rule.
func BuildUpdate(table string, set map[string]any, where string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	if where == "" {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_MISSING_WHERE", "update_records requires a where clause")
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	if len(set) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_VALUES", "at least one column to set is required")
	}

	assignments := make([]string, 0, len(set))
	binds := make([]any, 0, len(set))
	i := 1
	for col, val := range set {
		name, err := EscapeIdentifier(col)
		if err != nil {
			return Plan{}, err
		}
		assignments = append(assignments, fmt.Sprintf("%s = :%d", name, i))
		binds = append(binds, val)
		i++
	}

	clause, err := ValidateSingleStatement(where)
	if err != nil {
		return Plan{}, err
	}

	sqlText := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tbl, strings.Join(assignments, ", "), clause)
	return Plan{SQLText: sqlText, Binds: binds}, nil
}

// BuildDelete builds a DELETE statement. where is required for the same
// reason as BuildUpdate.
func BuildDelete(table string, where string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	if where == "" {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_MISSING_WHERE", "delete_records requires a where clause")
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	clause, err := ValidateSingleStatement(where)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("DELETE FROM %s WHERE %s", tbl, clause)}, nil
}
