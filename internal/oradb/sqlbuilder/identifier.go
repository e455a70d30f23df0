// Package sqlbuilder generates Oracle DDL/DML text and a bind plan from
// structured inputs. Caller-supplied identifiers pass through
// EscapeIdentifier and keywords through a whitelist check; other caller
// values are bound, or written into the text as single-quote-escaped
// literals. Caller where clauses are inserted as given once
// ValidateSingleStatement accepts them.
package sqlbuilder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// validUnquotedIdent matches identifiers that need no double-quoting
// after stripping: starts with a letter, then letters/digits/_/$. The
// character set deliberately mirrors stripped's, so anything that
// survives stripping and starts with a letter stays unquoted.
var validUnquotedIdent = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$]*$`)

// stripped removes every character outside [A-Za-z0-9_$] before any
// further identifier processing, per spec.md's escape_identifier rule.
var stripped = regexp.MustCompile(`[^A-Za-z0-9_$]`)

// systemUserDenylist blocks destructive operations against Oracle's
// built-in accounts, case-insensitively.
var systemUserDenylist = map[string]struct{}{
	"SYS": {}, "SYSTEM": {}, "SYSAUX": {}, "SYSBACKUP": {}, "SYSDG": {},
	"SYSKM": {}, "SYSRAC": {}, "DBSNMP": {}, "OUTLN": {}, "XDB": {},
	"ORDSYS": {}, "MDSYS": {}, "CTXSYS": {}, "WMSYS": {}, "APPQOSSYS": {},
}

// systemObjectPrefixes blocks destructive operations against Oracle data
// dictionary views; read access through query_records is allowed, these
// prefixes are only checked by builders that mutate.
var systemObjectPrefixes = []string{"V$", "DBA_", "GV$"}

// EscapeIdentifier strips everything outside [A-Za-z0-9_$], uppercases
// the result (Oracle's default case-folding for unquoted identifiers),
// and double-quotes it when it would not survive as a valid unquoted
// identifier. It returns E_INVALID_IDENT if nothing survives stripping.
func EscapeIdentifier(s string) (string, error) {
	cleaned := stripped.ReplaceAllString(s, "")
	if cleaned == "" {
		return "", errtax.New(errtax.KindDialect, "E_INVALID_IDENT", "identifier is empty after stripping invalid characters")
	}
	upper := strings.ToUpper(cleaned)
	if validUnquotedIdent.MatchString(upper) {
		return upper, nil
	}
	return `"` + upper + `"`, nil
}

// validOrderDirection matches an order_by entry's trailing direction
// keyword, with an optional NULLS FIRST/LAST qualifier, e.g. "DESC" or
// "DESC NULLS LAST".
var validOrderDirection = regexp.MustCompile(`(?i)^(ASC|DESC)(\s+NULLS\s+(FIRST|LAST))?$`)

// EscapeOrderByEntry splits an order_by entry such as "SALARY DESC" into
// its column and direction, escaping the column like any other
// identifier but validating the direction against a fixed keyword
// whitelist instead of stripping it — EscapeIdentifier's character
// filter would otherwise swallow the space and corrupt "SALARY DESC"
// into "SALARYDESC".
func EscapeOrderByEntry(s string) (string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", errtax.New(errtax.KindDialect, "E_INVALID_IDENT", "order_by entry is empty")
	}
	col, err := EscapeIdentifier(fields[0])
	if err != nil {
		return "", err
	}
	if len(fields) == 1 {
		return col, nil
	}
	direction := strings.ToUpper(strings.Join(fields[1:], " "))
	if !validOrderDirection.MatchString(direction) {
		return "", errtax.New(errtax.KindDialect, "E_INVALID_ORDER_DIRECTION", fmt.Sprintf("%q is not a valid order direction", direction))
	}
	return col + " " + direction, nil
}

// IsSystemUser reports whether name (case-insensitively) matches Oracle's
// built-in account denylist.
func IsSystemUser(name string) bool {
	_, ok := systemUserDenylist[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// IsSystemObject reports whether a schema-qualified or bare object name
// refers to a protected data-dictionary view (V$, DBA_, GV$) that must
// never be the target of a destructive operation.
func IsSystemObject(name string) bool {
	upper := strings.ToUpper(name)
	for _, prefix := range systemObjectPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// ValidateSingleStatement rejects semicolon-separated multi-statement
// bodies, per spec.md §4.3 safety rule 3. A single trailing semicolon
// (with only whitespace after it) is tolerated and stripped.
func ValidateSingleStatement(sqlText string) (string, error) {
	trimmed := strings.TrimSpace(sqlText)
	trimmed = strings.TrimSuffix(trimmed, ";")
	if strings.Contains(trimmed, ";") {
		return "", errtax.New(errtax.KindSecurity, "E_MULTI_STATEMENT", "semicolon-separated multi-statement bodies are not allowed")
	}
	return trimmed, nil
}
