package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

var aggregateFunctions = map[string]struct{}{
	"SUM": {}, "AVG": {}, "COUNT": {}, "MIN": {}, "MAX": {},
}

// BuildAggregate builds `SELECT <fn>(col)[, group-by cols] FROM table
// [GROUP BY ...]`.
func BuildAggregate(table, function, column string, groupBy []string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	fn := strings.ToUpper(strings.TrimSpace(function))
	if _, ok := aggregateFunctions[fn]; !ok {
		return Plan{}, errtax.New(errtax.KindDialect, "E_INVALID_FUNCTION", fmt.Sprintf("%q is not a recognized aggregate function", function))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	col, err := EscapeIdentifier(column)
	if err != nil {
		return Plan{}, err
	}

	groupCols := make([]string, 0, len(groupBy))
	for _, g := range groupBy {
		name, err := EscapeIdentifier(g)
		if err != nil {
			return Plan{}, err
		}
		groupCols = append(groupCols, name)
	}

	selectList := fmt.Sprintf("%s(%s) AS RESULT", fn, col)
	if len(groupCols) > 0 {
		selectList = strings.Join(groupCols, ", ") + ", " + selectList
	}

	sqlText := fmt.Sprintf("SELECT %s FROM %s", selectList, tbl)
	if len(groupCols) > 0 {
		sqlText += " GROUP BY " + strings.Join(groupCols, ", ")
	}
	return Plan{SQLText: sqlText}, nil
}

// BuildUnpivot wraps sourceQuery in an UNPIVOT clause, turning columns
// into rows keyed by nameColumn with their values under valueColumn.
// Like BuildPivot, sourceQuery is expected to already be a validated
// query body, not raw caller text.
func BuildUnpivot(sourceQuery, valueColumn, nameColumn string, columns []string) (Plan, error) {
	if len(columns) == 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_NO_COLUMNS", "at least one column is required")
	}
	valueCol, err := EscapeIdentifier(valueColumn)
	if err != nil {
		return Plan{}, err
	}
	nameCol, err := EscapeIdentifier(nameColumn)
	if err != nil {
		return Plan{}, err
	}
	cols := make([]string, 0, len(columns))
	for _, c := range columns {
		name, err := EscapeIdentifier(c)
		if err != nil {
			return Plan{}, err
		}
		cols = append(cols, name)
	}

	sqlText := fmt.Sprintf(
		"SELECT * FROM (%s) UNPIVOT (%s FOR %s IN (%s))",
		sourceQuery, valueCol, nameCol, strings.Join(cols, ", "),
	)
	return Plan{SQLText: sqlText}, nil
}

var statisticalFunctions = map[string]struct{}{
	"STDDEV": {}, "VARIANCE": {}, "CORR": {}, "REGR_SLOPE": {}, "MEDIAN": {},
}

var twoArgStatisticalFunctions = map[string]struct{}{
	"CORR": {}, "REGR_SLOPE": {},
}

// BuildStatistical builds `SELECT <fn>(col[, col2]) FROM table [GROUP BY
// ...]` for the statistical function catalog.
func BuildStatistical(table, function, column, column2 string, groupBy []string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	fn := strings.ToUpper(strings.TrimSpace(function))
	if _, ok := statisticalFunctions[fn]; !ok {
		return Plan{}, errtax.New(errtax.KindDialect, "E_INVALID_FUNCTION", fmt.Sprintf("%q is not a recognized statistical function", function))
	}
	_, needsSecond := twoArgStatisticalFunctions[fn]
	if needsSecond && column2 == "" {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAMETER", fmt.Sprintf("%s requires a second column", fn))
	}

	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	col, err := EscapeIdentifier(column)
	if err != nil {
		return Plan{}, err
	}

	args := col
	if needsSecond {
		col2, err := EscapeIdentifier(column2)
		if err != nil {
			return Plan{}, err
		}
		args = col + ", " + col2
	}

	groupCols := make([]string, 0, len(groupBy))
	for _, g := range groupBy {
		name, err := EscapeIdentifier(g)
		if err != nil {
			return Plan{}, err
		}
		groupCols = append(groupCols, name)
	}

	selectList := fmt.Sprintf("%s(%s) AS RESULT", fn, args)
	if len(groupCols) > 0 {
		selectList = strings.Join(groupCols, ", ") + ", " + selectList
	}
	sqlText := fmt.Sprintf("SELECT %s FROM %s", selectList, tbl)
	if len(groupCols) > 0 {
		sqlText += " GROUP BY " + strings.Join(groupCols, ", ")
	}
	return Plan{SQLText: sqlText}, nil
}

var timeSeriesIntervals = map[string]string{
	"day": "DD", "week": "IW", "month": "MM", "quarter": "Q", "year": "YYYY",
}

// BuildTimeSeries builds a TRUNC-bucketed time series aggregation:
// `SELECT TRUNC(dateColumn, '<fmt>') AS BUCKET, SUM(valueColumn) AS
// TOTAL FROM table GROUP BY TRUNC(dateColumn, '<fmt>') ORDER BY BUCKET`.
func BuildTimeSeries(table, dateColumn, valueColumn, interval string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	fmtCode, ok := timeSeriesIntervals[strings.ToLower(interval)]
	if !ok {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized interval", interval))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	dateCol, err := EscapeIdentifier(dateColumn)
	if err != nil {
		return Plan{}, err
	}
	valueCol, err := EscapeIdentifier(valueColumn)
	if err != nil {
		return Plan{}, err
	}

	bucket := fmt.Sprintf("TRUNC(%s, '%s')", dateCol, fmtCode)
	sqlText := fmt.Sprintf(
		"SELECT %s AS BUCKET, SUM(%s) AS TOTAL FROM %s GROUP BY %s ORDER BY BUCKET",
		bucket, valueCol, tbl, bucket,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildCorrelation builds `SELECT CORR(columnA, columnB) AS CORRELATION
// FROM table`.
func BuildCorrelation(table, columnA, columnB string) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	colA, err := EscapeIdentifier(columnA)
	if err != nil {
		return Plan{}, err
	}
	colB, err := EscapeIdentifier(columnB)
	if err != nil {
		return Plan{}, err
	}
	sqlText := fmt.Sprintf("SELECT CORR(%s, %s) AS CORRELATION FROM %s", colA, colB, tbl)
	return Plan{SQLText: sqlText}, nil
}
