package sqlbuilder

import "fmt"

// BuildTablespaceUsage builds a DBA_TABLESPACE_USAGE_METRICS selection,
// optionally restricted to a single tablespace.
func BuildTablespaceUsage(tablespaceName string) (Plan, error) {
	where := ""
	if tablespaceName != "" {
		ts, err := EscapeIdentifier(tablespaceName)
		if err != nil {
			return Plan{}, err
		}
		where = "TABLESPACE_NAME = '" + ts + "'"
	}
	return BuildSelect("DBA_TABLESPACE_USAGE_METRICS", []string{"TABLESPACE_NAME", "USED_PERCENT", "USED_SPACE", "TABLESPACE_SIZE"}, where, []string{"TABLESPACE_NAME"}, 0)
}

// BuildAlertLogTail builds a selection over the V$DIAG_ALERT_EXT alert
// log view, newest first, limited to lines.
func BuildAlertLogTail(lines int64) (Plan, error) {
	sqlText := fmt.Sprintf(
		"SELECT ORIGINATING_TIMESTAMP, MESSAGE_TEXT FROM V$DIAG_ALERT_EXT ORDER BY ORIGINATING_TIMESTAMP DESC FETCH FIRST %d ROWS ONLY",
		lines,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildBlockingSessions builds a self-join over V$SESSION surfacing
// blocking/blocked session pairs.
func BuildBlockingSessions() (Plan, error) {
	sqlText := "" +
		"SELECT blocker.SID AS BLOCKING_SID, blocker.SERIAL# AS BLOCKING_SERIAL, " +
		"waiter.SID AS WAITING_SID, waiter.SERIAL# AS WAITING_SERIAL, waiter.EVENT " +
		"FROM V$SESSION waiter JOIN V$SESSION blocker ON waiter.BLOCKING_SESSION = blocker.SID " +
		"WHERE waiter.BLOCKING_SESSION IS NOT NULL"
	return Plan{SQLText: sqlText}, nil
}

// BuildLongRunningQueries builds a V$SESSION_LONGOPS selection for
// operations past thresholdSeconds elapsed.
func BuildLongRunningQueries(thresholdSeconds int64) (Plan, error) {
	sqlText := fmt.Sprintf(
		"SELECT SID, SERIAL#, OPNAME, TARGET, ELAPSED_SECONDS, TIME_REMAINING FROM V$SESSION_LONGOPS WHERE ELAPSED_SECONDS >= %d AND TIME_REMAINING > 0 ORDER BY ELAPSED_SECONDS DESC",
		thresholdSeconds,
	)
	return Plan{SQLText: sqlText}, nil
}

// BuildDatafileStatus builds a DBA_DATA_FILES selection, optionally
// restricted to a single tablespace.
func BuildDatafileStatus(tablespaceName string) (Plan, error) {
	where := ""
	if tablespaceName != "" {
		ts, err := EscapeIdentifier(tablespaceName)
		if err != nil {
			return Plan{}, err
		}
		where = "TABLESPACE_NAME = '" + ts + "'"
	}
	return BuildSelect("DBA_DATA_FILES", []string{"FILE_NAME", "TABLESPACE_NAME", "BYTES", "STATUS", "AUTOEXTENSIBLE"}, where, []string{"TABLESPACE_NAME"}, 0)
}
