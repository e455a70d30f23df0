package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterSecurityTools adds every security-category tool descriptor to r.
func RegisterSecurityTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:        "list_roles",
			Description: "Lists database roles.",
			InputType:   ListRolesInput{},
			Exposure:    ExposurePublic,
			Category:    CategorySecurity,
			Strict:      true,
			Handler:     listRoles,
		},
		{
			Name:        "create_role",
			Description: "Creates a database role.",
			InputType:   CreateRoleInput{},
			Exposure:    ExposurePublic,
			Category:    CategorySecurity,
			Strict:      true,
			Handler:     createRole,
		},
		{
			Name:        "grant_role",
			Description: "Grants a role to a user or another role.",
			InputType:   GrantRoleInput{},
			Exposure:    ExposurePublic,
			Category:    CategorySecurity,
			Strict:      true,
			Handler:     grantRole,
		},
		{
			Name:                 "create_vpd_policy",
			Description:          "Creates a Virtual Private Database row-level security policy on a table.",
			InputType:            CreateVpdPolicyInput{},
			Exposure:             ExposureRestricted,
			Category:             CategorySecurity,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagVault},
			Handler:              createVpdPolicy,
		},
		{
			Name:                 "enable_tde_tablespace",
			Description:          "Enables Transparent Data Encryption on a tablespace.",
			InputType:            EnableTdeTablespaceInput{},
			Exposure:             ExposureRestricted,
			Category:             CategorySecurity,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagTDE},
			Handler:              enableTdeTablespace,
		},
		{
			Name:        "audit_policy_status",
			Description: "Reports unified audit policy enablement status.",
			InputType:   AuditPolicyStatusInput{},
			Exposure:    ExposurePublic,
			Category:    CategorySecurity,
			Strict:      true,
			Handler:     auditPolicyStatus,
		},
		{
			Name:                 "list_vault_policies",
			Description:          "Lists Database Vault realm and command rule policies.",
			InputType:            ListVaultPoliciesInput{},
			Exposure:             ExposurePublic,
			Category:             CategorySecurity,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagVault},
			Handler:              listVaultPolicies,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func listRoles(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	plan, err := sqlbuilder.BuildSelect("DBA_ROLES", []string{"ROLE", "PASSWORD_REQUIRED"}, "", []string{"ROLE"}, 0)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"roles": result.Rows}, nil, nil
}

func createRole(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	roleName := argString(args, "role_name")

	plan, err := sqlbuilder.BuildCreateRole(roleName)
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"role_name": roleName, "created": true}, nil, nil
}

func grantRole(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	roleName := argString(args, "role_name")
	grantee := argString(args, "grantee")

	plan, err := sqlbuilder.BuildGrantRole(roleName, grantee)
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"role_name": roleName, "grantee": grantee, "granted": true}, nil, nil
}

func createVpdPolicy(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagVault}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	table := argString(args, "table")
	policyName := argString(args, "policy_name")
	functionSchema := argString(args, "function_schema")
	functionName := argString(args, "function_name")
	statementTypes := argStringSlice(args, "statement_types")

	plan, err := sqlbuilder.BuildCreateVpdPolicy(table, policyName, functionSchema, functionName, statementTypes)
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModePLSQL})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"policy_name": policyName, "table": table, "created": true}, required, nil
}

func enableTdeTablespace(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagTDE}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	tablespaceName := argString(args, "tablespace_name")
	algorithm := argStringOr(args, "algorithm", "AES256")

	plan, err := sqlbuilder.BuildEnableTdeTablespace(tablespaceName, algorithm)
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"tablespace_name": tablespaceName, "algorithm": algorithm, "encrypted": true}, required, nil
}

func auditPolicyStatus(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	policyName := argStringOr(args, "policy_name", "")

	where := ""
	if policyName != "" {
		where = "POLICY_NAME = '" + escapedLiteral(policyName) + "'"
	}
	plan, err := sqlbuilder.BuildSelect("AUDIT_UNIFIED_ENABLED_POLICIES", []string{"POLICY_NAME", "ENTITY_NAME", "ENTITY_TYPE", "SUCCESS", "FAILURE"}, where, []string{"POLICY_NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"policies": result.Rows}, nil, nil
}

func listVaultPolicies(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagVault}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	plan, err := sqlbuilder.BuildSelect("DBA_DV_REALM", []string{"NAME", "DESCRIPTION", "ENABLED", "AUDIT_OPTIONS"}, "", []string{"NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"realms": result.Rows}, required, nil
}
