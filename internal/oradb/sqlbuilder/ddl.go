package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildDropTable builds a DROP TABLE, optionally with CASCADE CONSTRAINTS.
func BuildDropTable(table string, cascade bool) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	sqlText := "DROP TABLE " + tbl
	if cascade {
		sqlText += " CASCADE CONSTRAINTS"
	}
	return Plan{SQLText: sqlText}, nil
}

// BuildTruncateTable builds a TRUNCATE TABLE.
func BuildTruncateTable(table string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: "TRUNCATE TABLE " + tbl}, nil
}

// BuildAddColumn builds an ALTER TABLE ... ADD (column).
func BuildAddColumn(table string, col Column) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	if !IsWhitelistedColumnType(col.Type) {
		return Plan{}, errtax.New(errtax.KindDialect, "E_INVALID_COLUMN_TYPE", fmt.Sprintf("column type %q is not in the allowed set", col.Type))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	name, err := EscapeIdentifier(col.Name)
	if err != nil {
		return Plan{}, err
	}
	def := fmt.Sprintf("%s %s", name, col.Type)
	if !col.Nullable {
		def += " NOT NULL"
	}
	return Plan{SQLText: fmt.Sprintf("ALTER TABLE %s ADD (%s)", tbl, def)}, nil
}

// BuildDropColumn builds an ALTER TABLE ... DROP COLUMN.
func BuildDropColumn(table, column string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	col, err := EscapeIdentifier(column)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", tbl, col)}, nil
}

// BuildCreateIndex builds a CREATE [UNIQUE] INDEX.
func BuildCreateIndex(table, indexName string, columns []string, unique bool) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	if len(columns) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_COLUMNS", "at least one column is required")
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	idx, err := EscapeIdentifier(indexName)
	if err != nil {
		return Plan{}, err
	}
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		name, err := EscapeIdentifier(c)
		if err != nil {
			return Plan{}, err
		}
		cols = append(cols, name)
	}
	kw := "INDEX"
	if unique {
		kw = "UNIQUE INDEX"
	}
	return Plan{SQLText: fmt.Sprintf("CREATE %s %s ON %s (%s)", kw, idx, tbl, strings.Join(cols, ", "))}, nil
}

// BuildDropIndex builds a DROP INDEX.
func BuildDropIndex(indexName string) (Plan, error) {
	idx, err := EscapeIdentifier(indexName)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: "DROP INDEX " + idx}, nil
}

// BuildCreateDatabase builds a CREATE DATABASE for a traditional (non-PDB)
// database, sized by an initial datafile.
func BuildCreateDatabase(name string, datafileSizeMB int64) (Plan, error) {
	dbName, err := EscapeIdentifier(name)
	if err != nil {
		return Plan{}, err
	}
	sqlText := fmt.Sprintf(
		"CREATE DATABASE %s DATAFILE SIZE %dM",
		dbName, datafileSizeMB,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildDropDatabase builds a DROP DATABASE statement.
func BuildDropDatabase(name string) (Plan, error) {
	dbName, err := EscapeIdentifier(name)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: "DROP DATABASE " + dbName}, nil
}

// BuildOpenPDB / BuildClosePDB build the PDB lifecycle statements.
// Unlike BuildCreatePDB, which checks the capability Set itself, these
// builders do no capability gating; callers gate them.
func BuildOpenPDB(pdbName string) (Plan, error) {
	name, err := EscapeIdentifier(pdbName)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("ALTER PLUGGABLE DATABASE %s OPEN", name)}, nil
}

func BuildClosePDB(pdbName string) (Plan, error) {
	name, err := EscapeIdentifier(pdbName)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("ALTER PLUGGABLE DATABASE %s CLOSE IMMEDIATE", name)}, nil
}

// BuildDropPDB builds a DROP PLUGGABLE DATABASE ... INCLUDING DATAFILES
// statement. Callers must close the PDB first; this builder only emits
// the drop itself.
func BuildDropPDB(pdbName string) (Plan, error) {
	name, err := EscapeIdentifier(pdbName)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("DROP PLUGGABLE DATABASE %s INCLUDING DATAFILES", name)}, nil
}

