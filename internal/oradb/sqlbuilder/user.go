package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildCreateUser builds a CREATE USER statement plus one GRANT statement
// per requested privilege. Only CREATE USER binds the password; GRANT
// statements never take caller data as bind parameters since Oracle does
// not support bind variables in DDL identifiers or privilege names — the
// privilege list is instead validated against a fixed grantable-privilege
// set before being concatenated. password is bound, never written into
// SQLText or returned in any error.
func BuildCreateUser(username, password, tablespace, profile string, privileges []string) ([]Plan, error) {
	if IsSystemUser(username) {
		return nil, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_USER", fmt.Sprintf("%q is a reserved system account", username))
	}
	user, err := EscapeIdentifier(username)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("CREATE USER ")
	b.WriteString(user)
	b.WriteString(" IDENTIFIED BY :1")

	if tablespace != "" {
		ts, err := EscapeIdentifier(tablespace)
		if err != nil {
			return nil, err
		}
		b.WriteString(" DEFAULT TABLESPACE ")
		b.WriteString(ts)
	}
	if profile != "" {
		pr, err := EscapeIdentifier(profile)
		if err != nil {
			return nil, err
		}
		b.WriteString(" PROFILE ")
		b.WriteString(pr)
	}

	plans := []Plan{{SQLText: b.String(), Binds: []any{password}}}

	for _, priv := range privileges {
		if err := validateGrantablePrivilege(priv); err != nil {
			return nil, err
		}
		plans = append(plans, Plan{
			SQLText: fmt.Sprintf("GRANT %s TO %s", priv, user),
		})
	}

	return plans, nil
}

var grantablePrivileges = map[string]struct{}{
	"CONNECT": {}, "RESOURCE": {}, "CREATE SESSION": {}, "CREATE TABLE": {},
	"CREATE VIEW": {}, "CREATE PROCEDURE": {}, "CREATE SEQUENCE": {},
	"CREATE TRIGGER": {}, "UNLIMITED TABLESPACE": {}, "SELECT ANY TABLE": {},
	"DBA": {},
}

func validateGrantablePrivilege(priv string) error {
	if _, ok := grantablePrivileges[strings.ToUpper(strings.TrimSpace(priv))]; !ok {
		return errtax.New(errtax.KindDialect, "E_INVALID_PRIVILEGE", fmt.Sprintf("%q is not a recognized grantable privilege", priv))
	}
	return nil
}
