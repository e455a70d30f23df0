package sqlbuilder

import (
	"fmt"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
)

// BuildCreatePDB builds a CREATE PLUGGABLE DATABASE statement. Callers
// must pass the current capability Set; this function returns
// E_UNSUPPORTED_FEATURE without emitting SQL when PDB support is absent,
// per spec.md §4.3.
func BuildCreatePDB(caps *dialect.Set, name string, adminUser, adminPassword string) (Plan, error) {
	if !caps.Supports(dialect.TagPDB) {
		return Plan{}, errtax.New(errtax.KindCapability, "E_UNSUPPORTED_FEATURE", "connected Oracle instance does not support pluggable databases")
	}

	pdbName, err := EscapeIdentifier(name)
	if err != nil {
		return Plan{}, err
	}
	adminIdent, err := EscapeIdentifier(adminUser)
	if err != nil {
		return Plan{}, err
	}

	sqlText := fmt.Sprintf(
		"CREATE PLUGGABLE DATABASE %s ADMIN USER %s IDENTIFIED BY :1",
		pdbName, adminIdent,
	)
	return Plan{SQLText: sqlText, Binds: []any{adminPassword}}, nil
}
