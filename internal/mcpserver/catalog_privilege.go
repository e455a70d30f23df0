package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterPrivilegeTools adds every privilege-category tool descriptor to r.
func RegisterPrivilegeTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:        "list_system_privileges",
			Description: "Lists the system privileges and roles granted to a user.",
			InputType:   ListSystemPrivilegesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPrivilege,
			Strict:      true,
			Handler:     listSystemPrivileges,
		},
		{
			Name:        "check_user_privileges",
			Description: "Reports whether a user holds a specific system privilege, directly or via a role.",
			InputType:   CheckUserPrivilegesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPrivilege,
			Strict:      true,
			Handler:     checkUserPrivileges,
		},
		{
			Name:        "list_object_privileges",
			Description: "Lists object-level privilege grants, optionally restricted to a grantee or object.",
			InputType:   ListObjectPrivilegesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPrivilege,
			Strict:      true,
			Handler:     listObjectPrivileges,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func listSystemPrivileges(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")

	sysPrivPlan, err := sqlbuilder.BuildSelect("DBA_SYS_PRIVS", []string{"PRIVILEGE", "ADMIN_OPTION"}, "GRANTEE = '"+escapedLiteral(username)+"'", []string{"PRIVILEGE"}, 0)
	if err != nil {
		return nil, nil, err
	}
	rolePrivPlan, err := sqlbuilder.BuildSelect("DBA_ROLE_PRIVS", []string{"GRANTED_ROLE", "ADMIN_OPTION"}, "GRANTEE = '"+escapedLiteral(username)+"'", []string{"GRANTED_ROLE"}, 0)
	if err != nil {
		return nil, nil, err
	}

	sysPrivs, err := runQueryPlan(ctx, deps, sysPrivPlan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	roles, err := runQueryPlan(ctx, deps, rolePrivPlan.SQLText)
	if err != nil {
		return nil, nil, err
	}

	return map[string]any{"username": username, "system_privileges": sysPrivs.Rows, "roles": roles.Rows}, nil, nil
}

func checkUserPrivileges(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	privilege := argString(args, "privilege")

	where := "GRANTEE = '" + escapedLiteral(username) + "' AND PRIVILEGE = '" + escapedLiteral(privilege) + "'"
	plan, err := sqlbuilder.BuildSelect("DBA_SYS_PRIVS", []string{"PRIVILEGE"}, where, nil, 1)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"username": username, "privilege": privilege, "granted": len(result.Rows) > 0}, nil, nil
}

func listObjectPrivileges(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	grantee := argStringOr(args, "grantee", "")
	object := argStringOr(args, "object", "")

	clauses := make([]string, 0, 2)
	if grantee != "" {
		clauses = append(clauses, "GRANTEE = '"+escapedLiteral(grantee)+"'")
	}
	if object != "" {
		clauses = append(clauses, "TABLE_NAME = '"+escapedLiteral(object)+"'")
	}
	where := ""
	for i, c := range clauses {
		if i == 0 {
			where = c
		} else {
			where += " AND " + c
		}
	}

	plan, err := sqlbuilder.BuildSelect("DBA_TAB_PRIVS", []string{"GRANTEE", "OWNER", "TABLE_NAME", "PRIVILEGE", "GRANTABLE"}, where, []string{"GRANTEE", "TABLE_NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"grants": result.Rows}, nil, nil
}
