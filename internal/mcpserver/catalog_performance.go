package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterPerformanceTools adds every performance-category tool descriptor to r.
func RegisterPerformanceTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:                 "awr_snapshot",
			Description:          "Takes an AWR snapshot, or lists snapshots in a range.",
			InputType:            AwrSnapshotInput{},
			Exposure:             ExposureRestricted,
			Category:             CategoryPerformance,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagAWR},
			Handler:              awrSnapshot,
		},
		{
			Name:        "explain_plan",
			Description: "Explains a SELECT statement's execution plan.",
			InputType:   ExplainPlanInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPerformance,
			Strict:      true,
			Handler:     explainPlan,
		},
		{
			Name:        "gather_table_stats",
			Description: "Gathers optimizer statistics for a table.",
			InputType:   GatherTableStatsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPerformance,
			Strict:      true,
			Handler:     gatherTableStats,
		},
		{
			Name:                 "awr_report",
			Description:          "Renders a full AWR report between two snapshot ids.",
			InputType:            AwrReportInput{},
			Exposure:             ExposureRestricted,
			Category:             CategoryPerformance,
			Strict:               true,
			RequiredCapabilities: []dialect.Tag{dialect.TagAWR},
			Handler:              awrReport,
		},
		{
			Name:        "sql_tuning_advisor",
			Description: "Runs the SQL Tuning Advisor against a statement and returns its recommendations.",
			InputType:   SqlTuningAdvisorInput{},
			Exposure:    ExposureRestricted,
			Category:    CategoryPerformance,
			Strict:      true,
			Handler:     sqlTuningAdvisor,
		},
		{
			Name:        "session_wait_events",
			Description: "Lists active sessions and the event they are waiting on.",
			InputType:   SessionWaitEventsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPerformance,
			Strict:      true,
			Handler:     sessionWaitEvents,
		},
		{
			Name:        "top_sql_by_elapsed",
			Description: "Lists the top SQL statements in the shared pool by cumulative elapsed time.",
			InputType:   TopSqlByElapsedInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryPerformance,
			Strict:      true,
			Handler:     topSqlByElapsed,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func argInt64Ptr(args map[string]any, name string) *int64 {
	v, ok := args[name]
	if !ok {
		return nil
	}
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}

func execPlans(ctx context.Context, deps *Deps, mode exec.Mode, plans []sqlbuilder.Plan) error {
	return deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		for _, p := range plans {
			if _, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: p.SQLText, Binds: p.Binds, Mode: mode}); err != nil {
				return err
			}
		}
		return nil
	})
}

func awrSnapshot(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagAWR}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	operation := argString(args, "operation")
	beginSnapID := argInt64Ptr(args, "begin_snap_id")
	endSnapID := argInt64Ptr(args, "end_snap_id")

	plan, err := sqlbuilder.BuildAwrSnapshot(operation, beginSnapID, endSnapID)
	if err != nil {
		return nil, nil, err
	}

	if operation == "take" {
		if err := execPlans(ctx, deps, exec.ModePLSQL, []sqlbuilder.Plan{plan}); err != nil {
			return nil, nil, err
		}
		return map[string]any{"operation": operation, "taken": true}, required, nil
	}

	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"operation": operation, "snapshots": result.Rows}, required, nil
}

func explainPlan(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	sqlText := argString(args, "sql_text")

	plans, err := sqlbuilder.BuildExplainPlan(sqlText)
	if err != nil {
		return nil, nil, err
	}

	var planOutput []exec.Row
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		if _, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plans[0].SQLText, Mode: exec.ModeExecute}); err != nil {
			return err
		}
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plans[1].SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		planOutput = res.Rows
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"plan": planOutput}, nil, nil
}

func gatherTableStats(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	estimatePercent := 10.0
	if v, ok := args["estimate_percent"].(float64); ok {
		estimatePercent = v
	}

	plan, err := sqlbuilder.BuildGatherTableStats(table, estimatePercent)
	if err != nil {
		return nil, nil, err
	}
	if err := execPlans(ctx, deps, exec.ModePLSQL, []sqlbuilder.Plan{plan}); err != nil {
		return nil, nil, err
	}
	return map[string]any{"table": table, "gathered": true}, nil, nil
}

func awrReport(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	caps := deps.Capabilities(ctx)
	required := []dialect.Tag{dialect.TagAWR}
	if err := RequireCapabilities(caps, required); err != nil {
		return nil, nil, err
	}

	beginSnapID := argInt64Or(args, "begin_snap_id", 0)
	endSnapID := argInt64Or(args, "end_snap_id", 0)
	reportType := argStringOr(args, "report_type", "text")

	plan, err := sqlbuilder.BuildAwrReport(beginSnapID, endSnapID, reportType)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"report_type": reportType, "lines": result.Rows}, required, nil
}

func sqlTuningAdvisor(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	sqlText := argString(args, "sql_text")
	timeLimitSeconds := argInt64Or(args, "time_limit_seconds", 60)

	plans, err := sqlbuilder.BuildSqlTuningAdvisor(sqlText, timeLimitSeconds)
	if err != nil {
		return nil, nil, err
	}

	var report exec.Result
	err = deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		if _, err := deps.Engine.Execute(ctx, c, exec.Plan{SQLText: plans[0].SQLText, Mode: exec.ModePLSQL}); err != nil {
			return err
		}
		res, err := deps.Engine.Execute(ctx, c, deps.ApplyQueryDefaults(exec.Plan{SQLText: plans[1].SQLText, Mode: exec.ModeQuery}))
		if err != nil {
			return err
		}
		report = res
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"recommendations": report.Rows}, nil, nil
}

func sessionWaitEvents(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	sid := argInt64Ptr(args, "sid")

	plan, err := sqlbuilder.BuildSessionWaitEvents(sid)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"sessions": result.Rows}, nil, nil
}

func topSqlByElapsed(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	topN := argInt64Or(args, "top_n", 10)

	plan, err := sqlbuilder.BuildTopSqlByElapsed(topN)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"statements": result.Rows}, nil, nil
}
