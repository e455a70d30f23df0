package mcpserver

import (
	"context"

	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/dialect"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/exec"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/sqlbuilder"
)

// RegisterAnalyticsTools adds every analytics-category tool descriptor to r.
func RegisterAnalyticsTools(r *Registry) error {
	tools := []ToolDescriptor{
		{
			Name:        "window_functions",
			Description: "Runs an analytic window function (ROW_NUMBER, RANK, LAG, ...) over a table.",
			InputType:   WindowFunctionsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     windowFunctions,
		},
		{
			Name:        "pivot_operations",
			Description: "Pivots a source query's rows into columns.",
			InputType:   PivotOperationsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     pivotOperations,
		},
		{
			Name:        "aggregate_functions",
			Description: "Runs a SUM/AVG/COUNT/MIN/MAX aggregate, optionally grouped.",
			InputType:   AggregateFunctionsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     aggregateFunctions,
		},
		{
			Name:        "rank_functions",
			Description: "Runs a RANK/DENSE_RANK/ROW_NUMBER/NTILE ranking function over a table.",
			InputType:   RankFunctionsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     rankFunctions,
		},
		{
			Name:        "unpivot_operations",
			Description: "Unpivots a source query's columns into rows.",
			InputType:   UnpivotOperationsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     unpivotOperations,
		},
		{
			Name:        "statistical_functions",
			Description: "Runs a STDDEV/VARIANCE/CORR/REGR_SLOPE/MEDIAN statistical function.",
			InputType:   StatisticalFunctionsInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     statisticalFunctions,
		},
		{
			Name:        "time_series_analysis",
			Description: "Buckets a value column by day/week/month/quarter/year and sums it per bucket.",
			InputType:   TimeSeriesAnalysisInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     timeSeriesAnalysis,
		},
		{
			Name:        "correlation_analysis",
			Description: "Computes the Pearson correlation coefficient between two numeric columns.",
			InputType:   CorrelationAnalysisInput{},
			Exposure:    ExposurePublic,
			Category:    CategoryAnalytics,
			Strict:      true,
			Handler:     correlationAnalysis,
		},
	}

	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// runQueryPlan executes a read-only query body, applying the configured
// fetch size, row cap, and per-call timeout when deps.Config carries them.
func runQueryPlan(ctx context.Context, deps *Deps, sqlText string) (exec.Result, error) {
	plan := deps.ApplyQueryDefaults(exec.Plan{SQLText: sqlText, Mode: exec.ModeQuery})
	if deps.Config != nil {
		plan.MaxRows = deps.Config.Query.MaxRows
	}
	var result exec.Result
	err := deps.Pool.WithConnection(ctx, func(c *pool.Conn) error {
		res, err := deps.Engine.Execute(ctx, c, plan)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	return result, err
}

func windowFunctions(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	function := argString(args, "function")
	partitionBy := argStringSlice(args, "partition_by")
	orderBy := argStringSlice(args, "order_by")
	parameters := argStringSlice(args, "parameters")

	plan, err := sqlbuilder.BuildAnalytical(table, function, partitionBy, orderBy, parameters)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func pivotOperations(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	sourceQuery, err := sqlbuilder.ValidateSingleStatement(argString(args, "source_query"))
	if err != nil {
		return nil, nil, err
	}
	pivotColumn := argString(args, "pivot_column")
	values := argStringSlice(args, "values")

	plan, err := sqlbuilder.BuildPivot(sourceQuery, pivotColumn, values)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func aggregateFunctions(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	function := argString(args, "function")
	column := argString(args, "column")
	groupBy := argStringSlice(args, "group_by")

	plan, err := sqlbuilder.BuildAggregate(table, function, column, groupBy)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func rankFunctions(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	function := argString(args, "function")
	partitionBy := argStringSlice(args, "partition_by")
	orderBy := argStringSlice(args, "order_by")
	parameters := argStringSlice(args, "parameters")

	plan, err := sqlbuilder.BuildAnalytical(table, function, partitionBy, orderBy, parameters)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func unpivotOperations(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	sourceQuery, err := sqlbuilder.ValidateSingleStatement(argString(args, "source_query"))
	if err != nil {
		return nil, nil, err
	}
	valueColumn := argString(args, "value_column")
	nameColumn := argString(args, "name_column")
	columns := argStringSlice(args, "columns")

	plan, err := sqlbuilder.BuildUnpivot(sourceQuery, valueColumn, nameColumn, columns)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func statisticalFunctions(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	function := argString(args, "function")
	column := argString(args, "column")
	column2 := argStringOr(args, "column2", "")
	groupBy := argStringSlice(args, "group_by")

	plan, err := sqlbuilder.BuildStatistical(table, function, column, column2, groupBy)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func timeSeriesAnalysis(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	dateColumn := argString(args, "date_column")
	valueColumn := argString(args, "value_column")
	interval := argString(args, "interval")

	plan, err := sqlbuilder.BuildTimeSeries(table, dateColumn, valueColumn, interval)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}

func correlationAnalysis(ctx context.Context, deps *Deps, args map[string]any) (any, []dialect.Tag, error) {
	table := argString(args, "table")
	columnA := argString(args, "column_a")
	columnB := argString(args, "column_b")

	plan, err := sqlbuilder.BuildCorrelation(table, columnA, columnB)
	if err != nil {
		return nil, nil, err
	}
	result, err := runQueryPlan(ctx, deps, plan.SQLText)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{"rows": result.Rows, "columns": result.Columns}, nil, nil
}
