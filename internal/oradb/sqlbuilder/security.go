package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildCreateVpdPolicy builds a DBMS_RLS.ADD_POLICY anonymous PL/SQL block
// for Virtual Private Database row-level security. Every identifier
// argument is escaped; the generated predicate function name itself is
// never invoked here, only referenced by name.
func BuildCreateVpdPolicy(table, policyName, functionSchema, functionName string, statementTypes []string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	policy, err := EscapeIdentifier(policyName)
	if err != nil {
		return Plan{}, err
	}
	fnSchema, err := EscapeIdentifier(functionSchema)
	if err != nil {
		return Plan{}, err
	}
	fnName, err := EscapeIdentifier(functionName)
	if err != nil {
		return Plan{}, err
	}

	types := "SELECT"
	if len(statementTypes) > 0 {
		normalized := make([]string, 0, len(statementTypes))
		for _, st := range statementTypes {
			upper := strings.ToUpper(strings.TrimSpace(st))
			if _, ok := vpdStatementTypes[upper]; !ok {
				return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized VPD statement type", st))
			}
			normalized = append(normalized, upper)
		}
		types = strings.Join(normalized, ",")
	}

	block := fmt.Sprintf(
		"BEGIN DBMS_RLS.ADD_POLICY(object_schema => NULL, object_name => %s, policy_name => %s, function_schema => %s, policy_function => %s, statement_types => %s); END;",
		quoteLiteral(tbl), quoteLiteral(policy), quoteLiteral(fnSchema), quoteLiteral(fnName), quoteLiteral(types),
	)
	return Plan{SQLText: block}, nil
}

// BuildEnableTdeTablespace builds an ALTER TABLESPACE ... ENCRYPTION ONLINE
// USING <algorithm> ENCRYPT statement for Transparent Data Encryption.
func BuildEnableTdeTablespace(tablespaceName, algorithm string) (Plan, error) {
	ts, err := EscapeIdentifier(tablespaceName)
	if err != nil {
		return Plan{}, err
	}
	if algorithm == "" {
		algorithm = "AES256"
	}
	if !isKnownEncryptionAlgorithm(algorithm) {
		return Plan{}, errtax.New(errtax.KindDialect, "E_INVALID_ALGORITHM", fmt.Sprintf("%q is not a supported TDE algorithm", algorithm))
	}
	sqlText := fmt.Sprintf("ALTER TABLESPACE %s ENCRYPTION ONLINE USING '%s' ENCRYPT", ts, strings.ToUpper(algorithm))
	return Plan{SQLText: sqlText}, nil
}

var vpdStatementTypes = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "INDEX": {},
}

var knownEncryptionAlgorithms = map[string]struct{}{
	"AES128": {}, "AES192": {}, "AES256": {},
}

func isKnownEncryptionAlgorithm(algo string) bool {
	_, ok := knownEncryptionAlgorithms[strings.ToUpper(algo)]
	return ok
}

// quoteLiteral single-quotes an already-escaped identifier string for use
// as a DBMS_RLS string argument; identifiers passed in are the output of
// EscapeIdentifier, never raw caller input.
func quoteLiteral(ident string) string {
	trimmed := strings.Trim(ident, `"`)
	return "'" + strings.ReplaceAll(trimmed, "'", "''") + "'"
}
