package sqlbuilder

import (
	"fmt"
	"strings"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

// BuildAwrSnapshot builds either a snapshot-taking PL/SQL call or a
// selection of the AWR snapshot catalog between two ids.
func BuildAwrSnapshot(operation string, beginSnapID, endSnapID *int64) (Plan, error) {
	switch strings.ToLower(operation) {
	case "take":
		return Plan{SQLText: "BEGIN DBMS_WORKLOAD_REPOSITORY.CREATE_SNAPSHOT(); END;"}, nil
	case "report":
		if beginSnapID == nil || endSnapID == nil {
			return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "report requires begin_snap_id and end_snap_id")
		}
		sqlText := fmt.Sprintf(
			"SELECT SNAP_ID, BEGIN_INTERVAL_TIME, END_INTERVAL_TIME FROM DBA_HIST_SNAPSHOT WHERE SNAP_ID BETWEEN %d AND %d ORDER BY SNAP_ID",
			*beginSnapID, *endSnapID,
		)
		return Plan{SQLText: sqlText}, nil
	default:
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", fmt.Sprintf("%q is not a recognized AWR operation", operation))
	}
}

// BuildExplainPlan builds the EXPLAIN PLAN FOR statement plus the
// companion PLAN_TABLE read the caller should run after it; Plans is a
// two-element slice: [0] the EXPLAIN PLAN itself, [1] the PLAN_TABLE
// selection.
func BuildExplainPlan(sqlText string) ([]Plan, error) {
	body, err := ValidateSingleStatement(sqlText)
	if err != nil {
		return nil, err
	}
	explain := Plan{SQLText: "EXPLAIN PLAN FOR " + body}
	display := Plan{SQLText: "SELECT PLAN_TABLE_OUTPUT FROM TABLE(DBMS_XPLAN.DISPLAY())"}
	return []Plan{explain, display}, nil
}

// BuildGatherTableStats builds a DBMS_STATS.GATHER_TABLE_STATS anonymous
// block.
func BuildGatherTableStats(table string, estimatePercent float64) (Plan, error) {
	if IsSystemObject(table) {
		return Plan{}, errtax.New(errtax.KindSecurity, "E_SECURITY_SYSTEM_OBJECT", fmt.Sprintf("%q targets a protected system object prefix", table))
	}
	tbl, err := EscapeIdentifier(table)
	if err != nil {
		return Plan{}, err
	}
	block := fmt.Sprintf(
		"BEGIN DBMS_STATS.GATHER_TABLE_STATS(ownname => USER, tabname => '%s', estimate_percent => %g); END;",
		tbl, estimatePercent,
	)
	return Plan{SQLText: block}, nil
}

// BuildAwrReport builds a selection against
// DBMS_WORKLOAD_REPOSITORY.AWR_REPORT_TEXT/AWR_REPORT_HTML for the given
// snapshot range.
func BuildAwrReport(beginSnapID, endSnapID int64, reportType string) (Plan, error) {
	fn := "AWR_REPORT_TEXT"
	if strings.ToLower(reportType) == "html" {
		fn = "AWR_REPORT_HTML"
	}
	sqlText := fmt.Sprintf(
		"SELECT OUTPUT FROM TABLE(DBMS_WORKLOAD_REPOSITORY.%s((SELECT DBID FROM V$DATABASE), (SELECT INSTANCE_NUMBER FROM V$INSTANCE), %d, %d))",
		fn, beginSnapID, endSnapID,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildSqlTuningAdvisor builds two plans: a PL/SQL block that creates and
// executes a SQL Tuning Advisor task, then a query that reads back its
// report.
func BuildSqlTuningAdvisor(sqlText string, timeLimitSeconds int64) ([]Plan, error) {
	body, err := ValidateSingleStatement(sqlText)
	if err != nil {
		return nil, err
	}
	escaped := strings.ReplaceAll(body, "'", "''")
	create := Plan{SQLText: fmt.Sprintf(
		"DECLARE v_task VARCHAR2(64); BEGIN v_task := DBMS_SQLTUNE.CREATE_TUNING_TASK(sql_text => '%s', time_limit => %d, task_name => 'mcp_tuning_task'); DBMS_SQLTUNE.EXECUTE_TUNING_TASK(task_name => v_task); END;",
		escaped, timeLimitSeconds,
	)}
	report := Plan{SQLText: "SELECT DBMS_SQLTUNE.REPORT_TUNING_TASK('mcp_tuning_task') AS REPORT FROM DUAL"}
	return []Plan{create, report}, nil
}

// BuildSessionWaitEvents builds a V$SESSION/V$SESSION_WAIT selection,
// optionally restricted to a single sid.
func BuildSessionWaitEvents(sid *int64) (Plan, error) {
	where := "s.WAIT_CLASS != 'Idle'"
	if sid != nil {
		where = fmt.Sprintf("s.SID = %d AND %s", *sid, where)
	}
	sqlText := fmt.Sprintf(
		"SELECT s.SID, s.SERIAL#, s.EVENT, s.WAIT_CLASS, s.SECONDS_IN_WAIT FROM V$SESSION s WHERE %s ORDER BY s.SECONDS_IN_WAIT DESC",
		where,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildTopSqlByElapsed builds a V$SQL selection ordered by elapsed time
// descending, limited to topN rows.
func BuildTopSqlByElapsed(topN int64) (Plan, error) {
	if topN <= 0 {
		return Plan{}, errtax.New(errtax.KindValidation, "E_INVALID_PARAM", "top_n must be positive")
	}
	sqlText := fmt.Sprintf(
		"SELECT SQL_ID, SQL_TEXT, ELAPSED_TIME, EXECUTIONS, BUFFER_GETS FROM V$SQL ORDER BY ELAPSED_TIME DESC FETCH FIRST %d ROWS ONLY",
		topN,
	)
	return Plan{SQLText: sqlText}, nil
}
