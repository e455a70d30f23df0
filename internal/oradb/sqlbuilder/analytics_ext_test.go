package sqlbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
)

func TestBuildAggregateGrouped(t *testing.T) {
	plan, err := BuildAggregate("orders", "sum", "amount", []string{"region"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT REGION, SUM(AMOUNT) AS RESULT FROM ORDERS GROUP BY REGION", plan.SQLText)
}

func TestBuildAggregateRejectsUnknownFunction(t *testing.T) {
	_, err := BuildAggregate("orders", "CUSTOM_AGG", "amount", nil)
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_INVALID_FUNCTION", et.Code)
	assert.Equal(t, errtax.KindDialect, et.Kind)
}

func TestBuildUnpivot(t *testing.T) {
	plan, err := BuildUnpivot("SELECT q1, q2 FROM sales", "amount", "quarter", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM (SELECT q1, q2 FROM sales) UNPIVOT (AMOUNT FOR QUARTER IN (Q1, Q2))", plan.SQLText)
}

func TestBuildStatisticalTwoArgRequiresSecondColumn(t *testing.T) {
	_, err := BuildStatistical("metrics", "CORR", "x", "", nil)
	require.Error(t, err)

	plan, err := BuildStatistical("metrics", "corr", "x", "y", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT CORR(X, Y) AS RESULT FROM METRICS", plan.SQLText)
}

func TestBuildStatisticalSingleArg(t *testing.T) {
	plan, err := BuildStatistical("metrics", "MEDIAN", "latency", "", []string{"service"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT SERVICE, MEDIAN(LATENCY) AS RESULT FROM METRICS GROUP BY SERVICE", plan.SQLText)
}

func TestBuildTimeSeriesIntervalMapping(t *testing.T) {
	plan, err := BuildTimeSeries("orders", "created_at", "amount", "month")
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT TRUNC(CREATED_AT, 'MM') AS BUCKET, SUM(AMOUNT) AS TOTAL FROM ORDERS GROUP BY TRUNC(CREATED_AT, 'MM') ORDER BY BUCKET",
		plan.SQLText)

	_, err = BuildTimeSeries("orders", "created_at", "amount", "fortnight")
	require.Error(t, err)
}

func TestBuildCorrelation(t *testing.T) {
	plan, err := BuildCorrelation("metrics", "cpu", "latency")
	require.NoError(t, err)
	assert.Equal(t, "SELECT CORR(CPU, LATENCY) AS CORRELATION FROM METRICS", plan.SQLText)
}
