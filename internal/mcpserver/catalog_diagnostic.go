package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterDiagnosticTools adds every diagnostic-category tool descriptor to r.
func RegisterDiagnosticTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:                 "list_pdbs",
			Description:          "Lists pluggable databases and their open mode.",
			InputType:            ListPDBsInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryDiagnostic,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagPDB},
			Handler:              listPDBs,
		},
		{
			Name:                 "open_pdb",
			Description:          "Opens a pluggable database.",
			InputType:            OpenPDBInput{},
			Exposure:             ExposureRestricted,
			Category:             CategoryDiagnostic,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagPDB},
			Handler:              openPDB,
		},
		{
			Name:                 "close_pdb",
			Description:          "Closes a pluggable database.",
			InputType:            ClosePDBInput{},
			Exposure:             ExposureRestricted,
			Category:             CategoryDiagnostic,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagPDB},
			Handler:              closePDB,
		},
		{
			Name:                 "create_pdb",
			Description:          "Creates a pluggable database with a local administrator account.",
			InputType:            CreatePDBInput{},
			Exposure:             ExposurePublic,
			Category:             CategoryDiagnostic,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagPDB},
			Handler:              createPDB,
		},
		{
			Name:        "tablespace_usage",
			Description: "Reports tablespace usage percentage and size.",
			InputType:   TablespaceUsageInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryDiagnostic,
			Strict:      true,
			Handler:     tablespaceUsage,
		},
		{
			Name:        "alert_log_tail",
			Description: "Returns the most recent lines of the database alert log.",
			InputType:   AlertLogTailInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryDiagnostic,
			Strict:      true,
			Handler:     alertLogTail,
		},
		{
			Name:        "blocking_sessions",
			Description: "Lists sessions currently blocked by another session.",
			InputType:   BlockingSessionsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryDiagnostic,
			Strict:      true,
			Handler:     blockingSessions,
		},
		{
			Name:        "long_running_queries",
			Description: "Lists operations that have run past a given elapsed-time threshold.",
			InputType:   LongRunningQueriesInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryDiagnostic,
			Strict:      true,
			Handler:     longRunningQueries,
		},
		{
			Name:        "datafile_status",
			Description: "Reports datafile size and status, optionally restricted to a tablespace.",
			InputType:   DatafileStatusInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryDiagnostic,
			Strict:      true,
			Handler:     datafileStatus,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func listPDBs(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagPDB}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	plan, err := sqlbuilder.BuildSelect("DBA_PDBS", []string{"PDB_NAME", "STATUS", "CREATION_SCN"}, "", []string{"PDB_NAME"}, 0)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"pdbs": result.Rows}, required, nil
}

func openPDB(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagPDB}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	pdbName := argString(args, "pdb_name")
	plan, err := sqlbuilder.BuildOpenPDB(pdbName)
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
	return map[string]any{"pdb_name": pdbName, "opened": true}, required, nil
}

func closePDB(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagPDB}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	pdbName := argString(args, "pdb_name")
	plan, err := sqlbuilder.BuildClosePDB(pdbName)
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
	return map[string]any{"pdb_name": pdbName, "closed": true}, required, nil
}

func createPDB(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagPDB}

	pdbName := argString(args, "pdb_name")
	adminUser := argString(args, "admin_user")
	adminPassword := argString(args, "admin_password")

	plan, err := sqlbuilder.BuildCreatePDB(caps, pdbName, adminUser, adminPassword)
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
	return map[string]any{"pdb_name": pdbName, "created": true}, required, nil
}

func tablespaceUsage(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	tablespaceName := argStringOr(args, "tablespace_name", "")

	plan, err := sqlbuilder.BuildTablespaceUsage(tablespaceName)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"tablespaces": result.Rows}, nil, nil
}

func alertLogTail(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	lines := argInt64Or(args, "lines", 100)

	plan, err := sqlbuilder.BuildAlertLogTail(lines)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"lines": result.Rows}, nil, nil
}

func blockingSessions(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	plan, err := sqlbuilder.BuildBlockingSessions()
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"blocking_sessions": result.Rows}, nil, nil
}

func longRunningQueries(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	thresholdSeconds := argInt64Or(args, "threshold_seconds", 60)

	plan, err := sqlbuilder.BuildLongRunningQueries(thresholdSeconds)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"operations": result.Rows}, nil, nil
}

func datafileStatus(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	tablespaceName := argStringOr(args, "tablespace_name", "")

	plan, err := sqlbuilder.BuildDatafileStatus(tablespaceName)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"datafiles": result.Rows}, nil, nil
}
