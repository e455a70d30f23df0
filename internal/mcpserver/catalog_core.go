package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterCoreTools adds every core-category tool descriptor to r.
func RegisterCoreTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:        "list_databases",
			Description: "Lists the container database and, unless restricted, its pluggable databases.",
			InputType:   ListDatabasesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     listDatabases,
		},
		{
			Name:        "create_database",
			Description: "Creates a traditional database or a pluggable database.",
			InputType:   CreateDatabaseInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     createDatabase,
		},
		{
			Name:        "drop_database",
			Description: "Drops a traditional database or closes and drops a pluggable database.",
			InputType:   DropDatabaseInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     dropDatabase,
		},
		{
			Name:        "list_schemas",
			Description: "Lists database schemas (users that own objects).",
			InputType:   ListSchemasInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     listSchemas,
		},
		{
			Name:        "create_schema",
			Description: "Creates a schema, which in Oracle is a user granted CREATE SESSION.",
			InputType:   CreateSchemaInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     createSchema,
		},
		{
			Name:        "describe_schema",
			Description: "Describes a schema by listing the tables it owns; views and the default tablespace are not reported.",
			InputType:   DescribeSchemaInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     describeSchema,
		},
		{
			Name:        "create_user",
			Description: "Creates a database user and grants it any requested system privileges.",
			InputType:   CreateUserInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     createUser,
		},
		{
			Name:        "drop_user",
			Description: "Drops a database user, optionally cascading to owned objects.",
			InputType:   DropUserInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     dropUser,
		},
		{
			Name:        "alter_user_password",
			Description: "Changes a user's password.",
			InputType:   AlterUserPasswordInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     alterUserPassword,
		},
		{
			Name:        "grant_privileges",
			Description: "Grants system or object-level privileges to a user.",
			InputType:   GrantPrivilegesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     grantPrivileges,
		},
		{
			Name:        "revoke_privileges",
			Description: "Revokes system or object-level privileges from a user.",
			InputType:   RevokePrivilegesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     revokePrivileges,
		},
		{
			Name:        "list_tables",
			Description: "Lists tables in a schema.",
			InputType:   ListTablesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     listTables,
		},
		{
			Name:        "describe_table",
			Description: "Describes a table's columns, types, and nullability.",
			InputType:   DescribeTableInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     describeTable,
		},
		{
			Name:        "create_table",
			Description: "Creates a table from a column list and optional primary key.",
			InputType:   CreateTableInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     createTable,
		},
		{
			Name:        "drop_table",
			Description: "Drops a table, optionally with CASCADE CONSTRAINTS.",
			InputType:   DropTableInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     dropTable,
		},
		{
			Name:        "truncate_table",
			Description: "Removes all rows from a table without logging individual row deletes.",
			InputType:   TruncateTableInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     truncateTable,
		},
		{
			Name:        "add_column",
			Description: "Adds a column to an existing table.",
			InputType:   AddColumnInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     addColumn,
		},
		{
			Name:        "drop_column",
			Description: "Drops a column from a table.",
			InputType:   DropColumnInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     dropColumn,
		},
		{
			Name:        "create_index",
			Description: "Creates an index, optionally unique, over one or more columns.",
			InputType:   CreateIndexInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     createIndex,
		},
		{
			Name:        "drop_index",
			Description: "Drops an index.",
			InputType:   DropIndexInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     dropIndex,
		},
		{
			Name:        "query_records",
			Description: "Selects rows from a table with optional column, filter, order, and limit controls.",
			InputType:   QueryRecordsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     queryRecords,
		},
		{
			Name:        "insert_record",
			Description: "Inserts one row into a table.",
			InputType:   InsertRecordInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     insertRecord,
		},
		{
			Name:        "update_records",
			Description: "Updates rows matching a required WHERE clause.",
			InputType:   UpdateRecordsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     updateRecords,
		},
		{
			Name:        "delete_records",
			Description: "Deletes rows matching a required WHERE clause.",
			InputType:   DeleteRecordsInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryCore,
			Strict:      true,
			Handler:     deleteRecords,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func listDatabases(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	includePDBs := argBoolOr(args, "include_pdbs", true)
	includeStatus := argBoolOr(args, "include_status", true)

	caps := deps.Capabilities(ctx)
	cols := []string{"NAME AS DB_NAME"}
	if includeStatus {
		cols = []string{"NAME AS DB_NAME", "OPEN_MODE"}
	}
	plan, err := sqlbuilder.BuildSelect("V$DATABASE", cols, "", nil, 0)
	if err != nil {
		return nil, nil, err
	}

	var rows []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		rows = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if includePDBs && caps.Supports(dialect.TagPDB) {
		pdbPlan, err := sqlbuilder.BuildSelect("DBA_PDBS", []string{"PDB_NAME", "STATUS"}, "", nil, 0)
		if err != nil {
			return nil, nil, err
		}
		err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
			res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: pdbPlan.SQLText, Mode: exec.ModeQuery}))
			if err != nil {
				return err
			}
			rows = append(rows, res.Rows...)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return map[string]any{"databases": rows}, caps.Tags(), nil
}

func createDatabase(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	name := argString(args, "name")
	kind := argString(args, "type")
	sizeMB := argInt64Or(args, "datafile_size_mb", 100)

	var plan sqlbuilder.Plan
	var err error
	var capsUsed []dialect.Tag

	switch kind {
	case "pdb":
		caps := deps.Capabilities(ctx)
		capsUsed = []dialect.Tag{dialect.TagPDB}
		if err := RequireCapabilities(caps, capsUsed); err != nil {
			return nil, nil, err
		}
		return nil, nil, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "create a PDB via create_pdb, which also provisions the local administrator")
	case "traditional":
		plan, err = sqlbuilder.BuildCreateDatabase(name, sizeMB)
	default:
		return nil, nil, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "type must be \"traditional\" or \"pdb\"")
	}
	if err != nil {
		return nil, nil, err
	}

	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Binds: plan.Binds, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"name": name, "created": true}, capsUsed, nil
}

func dropDatabase(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	name := argString(args, "name")
	kind := argString(args, "type")

	var plan sqlbuilder.Plan
	var err error
	var capsUsed []dialect.Tag

	switch kind {
	case "pdb":
		caps := deps.Capabilities(ctx)
		capsUsed = []dialect.Tag{dialect.TagPDB}
		if err := RequireCapabilities(caps, capsUsed); err != nil {
			return nil, nil, err
		}
		closePlan, err := sqlbuilder.BuildClosePDB(name)
		if err != nil {
			return nil, nil, err
		}
		err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
			_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: closePlan.SQLText, Mode: exec.ModeExecute})
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		plan, err = sqlbuilder.BuildDropPDB(name)
		if err != nil {
			return nil, nil, err
		}
	case "traditional":
		plan, err = sqlbuilder.BuildDropDatabase(name)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "type must be \"traditional\" or \"pdb\"")
	}

	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"name": name, "dropped": true}, capsUsed, nil
}

func listSchemas(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	includeSystem := argBoolOr(args, "include_system", false)

	where := ""
	if !includeSystem {
		where = "ORACLE_MAINTAINED = 'N'"
	}
	plan, err := sqlbuilder.BuildSelect("DBA_USERS", []string{"USERNAME", "DEFAULT_TABLESPACE", "ACCOUNT_STATUS"}, where, []string{"USERNAME"}, 0)
	if err != nil {
		return nil, nil, err
	}

	var rows []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		rows = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"schemas": rows}, nil, nil
}

func createSchema(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	password := argString(args, "password")
	tablespace := argStringOr(args, "tablespace", "")

	plans, err := sqlbuilder.BuildCreateUser(username, password, tablespace, "", []string{"CREATE SESSION"})
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		for _, p := range plans {
			if _, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: p.SQLText, Binds: p.Binds, Mode: exec.ModeExecute}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"username": username, "created": true}, nil, nil
}

func describeSchema(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")

	tablesPlan, err := sqlbuilder.BuildSelect("DBA_TABLES", []string{"TABLE_NAME"}, "OWNER = '"+escapedLiteral(username)+"'", []string{"TABLE_NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}

	var tables []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: tablesPlan.SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		tables = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"username": username, "tables": tables}, nil, nil
}

func createUser(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	password := argString(args, "password")
	tablespace := argStringOr(args, "tablespace", "")
	profile := argStringOr(args, "profile", "")
	privileges := argStringSlice(args, "privileges")

	plans, err := sqlbuilder.BuildCreateUser(username, password, tablespace, profile, privileges)
	if err != nil {
		return nil, nil, err
	}

	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		createdUser := false
		for i, p := range plans {
			if _, execErr := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: p.SQLText, Binds: p.Binds, Mode: exec.ModeExecute}); execErr != nil {
				if i == 0 {
					return execErr
				}
				// A later GRANT failed after the user was created; roll the
				// user back out rather than leave a half-privileged account.
				if createdUser {
					dropPlan, dropErr := sqlbuilder.BuildDropUser(username, true)
					if dropErr == nil {
						_, _ = deps.Engine.Execute(ctx, c, exec.Plan{SQLText: dropPlan.SQLText, Mode: exec.ModeExecute})
					}
				}
				return execErr
			}
			createdUser = true
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"username": username, "created": true, "privileges": privileges}, nil, nil
}

func dropUser(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	cascade := argBoolOr(args, "cascade", false)

	plan, err := sqlbuilder.BuildDropUser(username, cascade)
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
	return map[string]any{"username": username, "dropped": true}, nil, nil
}

func alterUserPassword(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	newPassword := argString(args, "new_password")

	plan, err := sqlbuilder.BuildAlterUserPassword(username, newPassword)
	if err != nil {
		return nil, nil, err
	}
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		_, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Binds: plan.Binds, Mode: exec.ModeExecute})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"username": username, "password_changed": true}, nil, nil
}

func grantPrivileges(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	privilegeType := argString(args, "privilege_type")
	privileges := argStringSlice(args, "privileges")
	object := argStringOr(args, "object", "")

	plan, err := sqlbuilder.BuildGrantPrivileges(username, privilegeType, privileges, object)
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
	return map[string]any{"username": username, "granted": privileges}, nil, nil
}

func revokePrivileges(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	username := argString(args, "username")
	privileges := argStringSlice(args, "privileges")
	object := argStringOr(args, "object", "")

	plan, err := sqlbuilder.BuildRevokePrivileges(username, privileges, object)
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
	return map[string]any{"username": username, "revoked": privileges}, nil, nil
}

func listTables(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	schema := argStringOr(args, "schema", "")
	includeSystem := argBoolOr(args, "include_system", false)

	where := ""
	switch {
	case schema != "":
		where = "OWNER = '" + escapedLiteral(schema) + "'"
	case !includeSystem:
		where = "OWNER = USER"
	}

	plan, err := sqlbuilder.BuildSelect("DBA_TABLES", []string{"OWNER", "TABLE_NAME", "TABLESPACE_NAME"}, where, []string{"TABLE_NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}

	var rows []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		rows = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"tables": rows}, nil, nil
}

func describeTable(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")

	plan, err := sqlbuilder.BuildSelect("USER_TAB_COLUMNS", []string{"COLUMN_NAME", "DATA_TYPE", "NULLABLE", "COLUMN_ID"}, "TABLE_NAME = '"+escapedLiteral(table)+"'", []string{"COLUMN_ID"}, 0)
	if err != nil {
		return nil, nil, err
	}

	var rows []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		rows = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"table": table, "columns": rows}, nil, nil
}

func toSqlbuilderColumns(in []ColumnInput) []sqlbuilder.Column {
	out := make([]sqlbuilder.Column, 0, len(in))
	for _, c := range in {
		nullable := true
		if c.Nullable != nil {
			nullable = *c.Nullable
		}
		out = append(out, sqlbuilder.Column{Name: c.Name, Type: c.Type, Nullable: nullable})
	}
	return out
}

func createTable(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	tablespace := argStringOr(args, "tablespace", "")
	primaryKey := argStringSlice(args, "primary_key")

	rawCols, _ := args["columns"].([]any)
	cols := make([]ColumnInput, 0, len(rawCols))
	for _, rc := range rawCols {
		m, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		ci := ColumnInput{Name: argString(m, "name"), Type: argString(m, "type")}
		if v, ok := m["nullable"].(bool); ok {
			ci.Nullable = &v
		}
		cols = append(cols, ci)
	}

	plan, err := sqlbuilder.BuildCreateTable(table, toSqlbuilderColumns(cols), primaryKey, tablespace)
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
	return map[string]any{"table": table, "created": true}, nil, nil
}

func dropTable(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	cascade := argBoolOr(args, "cascade", false)

	plan, err := sqlbuilder.BuildDropTable(table, cascade)
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
	return map[string]any{"table": table, "dropped": true}, nil, nil
}

func truncateTable(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")

	plan, err := sqlbuilder.BuildTruncateTable(table)
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
	return map[string]any{"table": table, "truncated": true}, nil, nil
}

func addColumn(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	colArg, _ := args["column"].(map[string]any)
	col := sqlbuilder.Column{Name: argString(colArg, "name"), Type: argString(colArg, "type"), Nullable: true}
	if v, ok := colArg["nullable"].(bool); ok {
		col.Nullable = v
	}

	plan, err := sqlbuilder.BuildAddColumn(table, col)
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
	return map[string]any{"table": table, "column": col.Name, "added": true}, nil, nil
}

func dropColumn(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	column := argString(args, "column")

	plan, err := sqlbuilder.BuildDropColumn(table, column)
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
	return map[string]any{"table": table, "column": column, "dropped": true}, nil, nil
}

func createIndex(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	indexName := argString(args, "index_name")
	columns := argStringSlice(args, "columns")
	unique := argBoolOr(args, "unique", false)

	plan, err := sqlbuilder.BuildCreateIndex(table, indexName, columns, unique)
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
	return map[string]any{"index_name": indexName, "created": true}, nil, nil
}

func dropIndex(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	indexName := argString(args, "index_name")

	plan, err := sqlbuilder.BuildDropIndex(indexName)
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
	return map[string]any{"index_name": indexName, "dropped": true}, nil, nil
}

func queryRecords(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	columns := argStringSlice(args, "columns")
	where := argStringOr(args, "where", "")
	orderBy := argStringSlice(args, "order_by")
	limit := argInt64Or(args, "limit", 100)

	// A limit of 0 is the client asking for nothing: return an empty row
	// set without preparing or executing the SQL body at all.
	if limit == 0 {
		return map[string]any{"rows": []exec.Row{}, "columns": []string{}, "row_count": 0, "truncated": false}, nil, nil
	}

	truncated := false
	if deps.Config != nil && deps.Config.Query.MaxRows > 0 {
		if maxRows := int64(deps.Config.Query.MaxRows); limit > maxRows {
			limit = maxRows
			truncated = true
		}
	}

	plan, err := sqlbuilder.BuildSelect(table, columns, where, orderBy, limit)
	if err != nil {
		return nil, nil, err
	}

	execPlan := deps.ApplyQueryDefaults(exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeQuery, MaxRows: int(limit)})

	var result exec.Result
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, execPlan)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	truncated = truncated || result.Truncated
	return map[string]any{"rows": result.Rows, "columns": result.Columns, "row_count": len(result.Rows), "truncated": truncated}, nil, nil
}

func insertRecord(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	values, _ := args["values"].(map[string]any)

	plan, err := sqlbuilder.BuildInsert(table, values)
	if err != nil {
		return nil, nil, err
	}

	var affected int64
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Binds: plan.Binds, Mode: exec.ModeExecute})
		if err != nil {
			return err
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"table": table, "rows_affected": affected}, nil, nil
}

func updateRecords(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	set, _ := args["set"].(map[string]any)
	where := argString(args, "where")

	plan, err := sqlbuilder.BuildUpdate(table, set, where)
	if err != nil {
		return nil, nil, err
	}

	var affected int64
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Binds: plan.Binds, Mode: exec.ModeExecute})
		if err != nil {
			return err
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"table": table, "rows_affected": affected}, nil, nil
}

func deleteRecords(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	where := argString(args, "where")

	plan, err := sqlbuilder.BuildDelete(table, where)
	if err != nil {
		return nil, nil, err
	}

	var affected int64
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plan.SQLText, Mode: exec.ModeExecute})
		if err != nil {
			return err
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"table": table, "rows_affected": affected}, nil, nil
}

// escapedLiteral single-quote-escapes a value destined for a literal
// predicate this package builds itself (never caller-supplied WHERE
// text), so a name containing an apostrophe cannot break out of the
// generated clause.
func escapedLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
