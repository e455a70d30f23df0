package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildCreateTable builds a CREATE TABLE statement. Column types are
// restricted to the whitelist in types.go; an optional primary key clause
// is appended when primaryKey is non-empty.
func BuildCreateTable(table string, columns []Column, primaryKey []string, tablespace string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	if len(columns) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_COLUMNS", "at least one column is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", tbl)

	colDefs := make([]string, 0, len(columns))
	for _, col := range columns {
		if !IsWhitelistedColumnType(col.Type) {
			return Plan{}, errtax.New(errtax.KindDialect, "E_INVALID_COLUMN_TYPE", fmt.Sprintf("column type %q is not in the allowed set", col.Type))
		}
		name, err := EscapeIdentifier(col.Name)
		if err != nil {
			return Plan{}, err
		}
		def := fmt.Sprintf("  %s %s", name, col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		colDefs = append(colDefs, def)
	}
	b.WriteString(strings.Join(colDefs, ",\n"))

	if len(primaryKey) > 0 {
		pkCols := make([]string, 0, len(primaryKey))
		for _, pk := range primaryKey {
			name, err := EscapeIdentifier(pk)
			if err != nil {
				return Plan{}, err
			}
			pkCols = append(pkCols, name)
		}
		fmt.Fprintf(&b, ",\n  PRIMARY KEY (%s)", strings.Join(pkCols, ", "))
	}

	b.WriteString("\n)")

	if tablespace != "" {
		ts, err := EscapeIdentifier(tablespace)
		if err != nil {
			return Plan{}, err
		}
		fmt.Fprintf(&b, " TABLESPACE %s", ts)
	}

	return Plan{SQLText: b.String()}, nil
}
