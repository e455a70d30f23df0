package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildDropUser builds a DROP USER, optionally CASCADE.
func BuildDropUser(username string, cascade bool) (Plan, error) {
	if IsSystemUser(username) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_USER", fmt.Sprintf("%q is a reserved system account", username))
	}
	user, err := EscapeIdentifier(username)
	if err != nil {
		return Plan{}, err
	}
	sqlText := "DROP USER " + user
	if cascade {
		sqlText += " CASCADE"
	}
	return Plan{SQLText: sqlText}, nil
}

// BuildAlterUserPassword builds an ALTER USER ... IDENTIFIED BY statement
// with the new password bound, never interpolated.
func BuildAlterUserPassword(username, newPassword string) (Plan, error) {
	if IsSystemUser(username) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_USER", fmt.Sprintf("%q is a reserved system account", username))
	}
	user, err := EscapeIdentifier(username)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: "ALTER USER " + user + " IDENTIFIED BY :1", Binds: []any{newPassword}}, nil
}

// BuildGrantPrivileges builds one GRANT statement covering every requested
// privilege, system or object-level. System privileges are validated
// against the fixed grantable set; object privileges are granted against a
// single escaped object name.
func BuildGrantPrivileges(username, privilegeType string, privileges []string, object string) (Plan, error) {
	if IsSystemUser(username) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_USER", fmt.Sprintf("%q is a reserved system account", username))
	}
	user, err := EscapeIdentifier(username)
	if err != nil {
		return Plan{}, err
	}
	if len(privileges) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_PRIVILEGES", "at least one privilege is required")
	}

	switch strings.ToLower(privilegeType) {
	case "system":
		for _, p := range privileges {
			if err := validateGrantablePrivilege(p); err != nil {
				return Plan{}, err
			}
		}
		return Plan{SQLText: fmt.Sprintf("GRANT %s TO %s", strings.Join(privileges, ", "), user)}, nil
	case "object":
		if object == "" {
			return Plan{}, errtax.New(errtax.KindValidation, "E_MISSING_OBJECT", "object-level privileges require an object name")
		}
		if IsSystemObject(object) {
			return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", object))
		}
		obj, err := EscapeIdentifier(object)
		if err != nil {
			return Plan{}, err
		}
		for _, p := range privileges {
			if err := validateObjectPrivilege(p); err != nil {
				return Plan{}, err
			}
		}
		return Plan{SQLText: fmt.Sprintf("GRANT %s ON %s TO %s", strings.Join(privileges, ", "), obj, user)}, nil
	default:
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized privilege_type", privilegeType))
	}
}

// BuildRevokePrivileges builds one REVOKE statement, object-scoped when
// object is non-empty.
func BuildRevokePrivileges(username string, privileges []string, object string) (Plan, error) {
	if IsSystemUser(username) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_USER", fmt.Sprintf("%q is a reserved system account", username))
	}
	user, err := EscapeIdentifier(username)
	if err != nil {
		return Plan{}, err
	}
	if len(privileges) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_PRIVILEGES", "at least one privilege is required")
	}
	if object == "" {
		return Plan{SQLText: fmt.Sprintf("REVOKE %s FROM %s", strings.Join(privileges, ", "), user)}, nil
	}
	if IsSystemObject(object) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", object))
	}
	obj, err := EscapeIdentifier(object)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("REVOKE %s ON %s FROM %s", strings.Join(privileges, ", "), obj, user)}, nil
}

// BuildCreateRole builds a CREATE ROLE statement.
func BuildCreateRole(roleName string) (Plan, error) {
	role, err := EscapeIdentifier(roleName)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: "CREATE ROLE " + role}, nil
}

// BuildGrantRole builds a GRANT <role> TO <grantee> statement.
func BuildGrantRole(roleName, grantee string) (Plan, error) {
	role, err := EscapeIdentifier(roleName)
	if err != nil {
		return Plan{}, err
	}
	user, err := EscapeIdentifier(grantee)
	if err != nil {
		return Plan{}, err
	}
	return Plan{SQLText: fmt.Sprintf("GRANT %s TO %s", role, user)}, nil
}

var objectPrivileges = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "EXECUTE": {},
	"REFERENCES": {}, "INDEX": {}, "ALTER": {}, "ALL": {},
}

func validateObjectPrivilege(priv string) error {
	if _, ok := objectPrivileges[strings.ToUpper(strings.TrimSpace(priv))]; !ok {
		return errtax.New(errtax.KindDialect, "E_INVALID_PRIVILEGE", fmt.Sprintf("%q is not a recognized object privilege", priv))
	}
	return nil
}
