package exec

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oracle-mcp/oracle-mcp-server/internal/config"
	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
)

func newTestPool(t *testing.T) (*pool.Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.PoolConfig{MaxSize: 2, AcquireTimeoutMS: 1000, LeakThresholdMS: 60000}
	p := pool.New(db, cfg, zerolog.Nop())
	t.Cleanup(func() { p.Close() })
	return p, mock
}

func TestExecuteQueryMode(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("SELECT id, name FROM employees").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "Ada").
			AddRow(2, "Grace"))

	e := New(zerolog.Nop())

	var result Result
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		var execErr error
		result, execErr = e.Execute(context.Background(), c, Plan{
			SQLText: "SELECT id, name FROM employees",
			Mode:    ModeQuery,
		})
		return execErr
	})

	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, []string{"ID", "NAME"}, result.Columns)
	assert.EqualValues(t, 1, result.Rows[0]["ID"])
	assert.Equal(t, "Ada", result.Rows[0]["NAME"])
}

func TestExecuteQueryModeTruncatesAtMaxRows(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("SELECT id FROM big_table").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))

	e := New(zerolog.Nop())
	var result Result
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		var execErr error
		result, execErr = e.Execute(context.Background(), c, Plan{
			SQLText: "SELECT id FROM big_table",
			Mode:    ModeQuery,
			MaxRows: 2,
		})
		return execErr
	})

	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.True(t, result.Truncated)
}

func TestExecuteStreamMode(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("SELECT id FROM employees").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))

	e := New(zerolog.Nop())
	var seen []any
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		_, execErr := e.Execute(context.Background(), c, Plan{
			SQLText: "SELECT id FROM employees",
			Mode:    ModeStream,
			RowFn: func(row Row) (bool, error) {
				seen = append(seen, row["ID"])
				return len(seen) >= 2, nil // stop early
			},
		})
		return execErr
	})

	require.NoError(t, err)
	assert.Len(t, seen, 2, "callback signaled stop after 2 rows")
}

func TestExecuteStreamModeRequiresCallback(t *testing.T) {
	p, _ := newTestPool(t)
	e := New(zerolog.Nop())

	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		_, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT 1 FROM DUAL", Mode: ModeStream})
		return execErr
	})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "E_MISSING_CALLBACK", et.Code)
}

func TestExecuteExecuteMode(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("UPDATE employees SET name = :1 WHERE id = :2").
		ExpectExec().
		WithArgs("Ada Lovelace", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := New(zerolog.Nop())
	var result Result
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		var execErr error
		result, execErr = e.Execute(context.Background(), c, Plan{
			SQLText: "UPDATE employees SET name = :1 WHERE id = :2",
			Binds:   []any{"Ada Lovelace", 1},
			Mode:    ModeExecute,
		})
		return execErr
	})

	require.NoError(t, err)
	assert.EqualValues(t, 1, result.RowsAffected)
}

func TestExecuteStatementCacheReusesPreparedStatement(t *testing.T) {
	p, mock := newTestPool(t)
	prep := mock.ExpectPrepare("SELECT 1 FROM DUAL")
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	prep.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	e := New(zerolog.Nop())
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		for i := 0; i < 2; i++ {
			if _, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT 1 FROM DUAL", Mode: ModeQuery}); execErr != nil {
				return execErr
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "a single Prepare should serve both queries via the LRU cache")
}

func TestExecuteInvalidMode(t *testing.T) {
	p, _ := newTestPool(t)
	e := New(zerolog.Nop())

	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		_, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT 1 FROM DUAL", Mode: "bogus"})
		return execErr
	})
	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindValidation, et.Kind)
}

func TestExecuteTranslatesOracleErrorCode(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("SELECT \\* FROM missing_table").
		ExpectQuery().
		WillReturnError(errors.New("ORA-00942: table or view does not exist"))

	e := New(zerolog.Nop())
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		_, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT * FROM missing_table", Mode: ModeQuery})
		return execErr
	})

	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, "ORA-00942", et.Code)
	assert.NotEmpty(t, et.Hint)
}

func TestExecuteRespectsTimeout(t *testing.T) {
	p, mock := newTestPool(t)
	mock.ExpectPrepare("SELECT 1 FROM DUAL").
		ExpectQuery().
		WillDelayFor(50 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	e := New(zerolog.Nop())
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		_, execErr := e.Execute(context.Background(), c, Plan{
			SQLText: "SELECT 1 FROM DUAL",
			Mode:    ModeQuery,
			Timeout: 5 * time.Millisecond,
		})
		return execErr
	})

	require.Error(t, err)
	et, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindTimeout, et.Kind)
}

func TestForgetConnDropsStatementCache(t *testing.T) {
	p, mock := newTestPool(t)
	first := mock.ExpectPrepare("SELECT 1 FROM DUAL")
	first.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	second := mock.ExpectPrepare("SELECT 1 FROM DUAL")
	second.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	e := New(zerolog.Nop())
	err := p.WithConnection(context.Background(), func(c *pool.Conn) error {
		if _, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT 1 FROM DUAL", Mode: ModeQuery}); execErr != nil {
			return execErr
		}
		e.ForgetConn(c.Conn)
		_, execErr := e.Execute(context.Background(), c, Plan{SQLText: "SELECT 1 FROM DUAL", Mode: ModeQuery})
		return execErr
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "ForgetConn must drop the cache so the next call prepares afresh")
}

func TestTranslateDriverErrorBadConn(t *testing.T) {
	et := translateDriverError(driver.ErrBadConn)
	assert.Equal(t, errtax.KindDriver, et.Kind)
}
