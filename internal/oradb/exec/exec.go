// Package exec runs statements and PL/SQL blocks against a borrowed
// connection: materialized queries, streamed row callbacks, plain
// execute, and PL/SQL blocks, each with timeout and cancellation
// support and a per-connection LRU prepared-statement cache.
package exec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/oradb/pool"
)

// Mode selects one of the four execution shapes spec.md §4.5 defines.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModeStream  Mode = "stream"
	ModeExecute Mode = "execute"
	ModePLSQL   Mode = "plsql"
)

const (
	defaultFetchSize = 1000
	defaultMaxRows   = 10000
)

// Plan is the input to Execute: a SQL/PLSQL body, its bind values, the
// execution mode, and the row/timeout/cancellation controls.
type Plan struct {
	SQLText    string
	Binds      []any
	Mode       Mode
	FetchSize  int
	MaxRows    int
	Timeout    time.Duration
	RowFn      func(row map[string]any) (stop bool, err error) // required for ModeStream
}

// Row is a single result row: column name (uppercased, per Oracle
// default) to a driver-typed value.
type Row = map[string]any

// Result is the outcome of Execute for query/execute/plsql modes.
type Result struct {
	Rows         []Row
	Columns      []string
	RowsAffected int64
	Truncated    bool // true if the query mode hit MaxRows before the cursor was exhausted
}

// Engine runs Plans against connections borrowed from a pool, caching
// prepared statements per connection.
type Engine struct {
	logger zerolog.Logger

	mu     sync.Mutex
	caches map[*sql.Conn]*stmtCache
}

// New builds an Engine.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "exec").Logger(),
		caches: make(map[*sql.Conn]*stmtCache),
	}
}

func (e *Engine) cacheFor(c *pool.Conn) *stmtCache {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cache, ok := e.caches[c.Conn]; ok {
		return cache
	}
	cache := newStmtCache()
	e.caches[c.Conn] = cache
	return cache
}

// ForgetConn drops and closes the statement cache for a connection that
// is being reset or removed from the pool, so the cache map does not
// grow unbounded across connection churn. Its signature matches the
// pool's close hook; the composition root wires it in with
// pool.SetCloseHook(engine.ForgetConn).
func (e *Engine) ForgetConn(conn *sql.Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cache, ok := e.caches[conn]; ok {
		cache.Close()
		delete(e.caches, conn)
	}
}

// Execute runs plan against c according to plan.Mode.
func (e *Engine) Execute(ctx context.Context, c *pool.Conn, plan Plan) (Result, error) {
	if plan.FetchSize <= 0 {
		plan.FetchSize = defaultFetchSize
	}
	if plan.MaxRows <= 0 {
		plan.MaxRows = defaultMaxRows
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if plan.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, plan.Timeout)
		defer cancel()
	}

	start := time.Now()
	var result Result
	var err error

	switch plan.Mode {
	case ModeQuery:
		result, err = e.runQuery(runCtx, c, plan)
	case ModeStream:
		result, err = e.runStream(runCtx, c, plan)
	case ModeExecute:
		result, err = e.runExecute(runCtx, c, plan)
	case ModePLSQL:
		result, err = e.runPLSQL(runCtx, c, plan)
	default:
		return Result{}, errtax.New(errtax.KindValidation, "E_INVALID_MODE", fmt.Sprintf("unknown execution mode %q", plan.Mode))
	}

	elapsed := time.Since(start)
	e.logger.Trace().
		Str("mode", string(plan.Mode)).
		Dur("elapsed", elapsed).
		Str("sql", redactSQLForLog(plan.SQLText)).
		Msg("statement executed")

	if err != nil {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			// Drivers report an interrupted call with their own error value;
			// the context tells whether it was a timeout or a cancellation.
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return Result{}, translateDriverError(err)
	}
	return result, nil
}

func (e *Engine) runQuery(ctx context.Context, c *pool.Conn, plan Plan) (Result, error) {
	cache := e.cacheFor(c)
	stmt, err := cache.prepare(ctx, c.Conn, plan.SQLText)
	if err != nil {
		return Result{}, err
	}

	rows, err := stmt.QueryContext(ctx, plan.Binds...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	upperCols := make([]string, len(cols))
	for i, col := range cols {
		upperCols[i] = strings.ToUpper(col)
	}

	result := Result{Columns: upperCols}
	for rows.Next() {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if len(result.Rows) >= plan.MaxRows {
			result.Truncated = true
			break
		}
		row, err := scanRow(rows, upperCols)
		if err != nil {
			return Result{}, err
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (e *Engine) runStream(ctx context.Context, c *pool.Conn, plan Plan) (Result, error) {
	if plan.RowFn == nil {
		return Result{}, errtax.New(errtax.KindValidation, "E_MISSING_CALLBACK", "stream mode requires a row callback")
	}

	cache := e.cacheFor(c)
	stmt, err := cache.prepare(ctx, c.Conn, plan.SQLText)
	if err != nil {
		return Result{}, err
	}

	rows, err := stmt.QueryContext(ctx, plan.Binds...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}
	upperCols := make([]string, len(cols))
	for i, col := range cols {
		upperCols[i] = strings.ToUpper(col)
	}

	count := 0
	for rows.Next() {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		row, err := scanRow(rows, upperCols)
		if err != nil {
			return Result{}, err
		}
		count++
		stop, err := plan.RowFn(row)
		if err != nil {
			return Result{}, err
		}
		if stop {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	return Result{Columns: upperCols, RowsAffected: int64(count)}, nil
}

func (e *Engine) runExecute(ctx context.Context, c *pool.Conn, plan Plan) (Result, error) {
	cache := e.cacheFor(c)
	stmt, err := cache.prepare(ctx, c.Conn, plan.SQLText)
	if err != nil {
		return Result{}, err
	}

	res, err := stmt.ExecContext(ctx, plan.Binds...)
	if err != nil {
		return Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some DDL statements report no RowsAffected; that is not a
		// failure, just an absent count.
		return Result{}, nil
	}
	return Result{RowsAffected: affected}, nil
}

func (e *Engine) runPLSQL(ctx context.Context, c *pool.Conn, plan Plan) (Result, error) {
	// PL/SQL blocks are not cached: anonymous blocks rarely repeat
	// verbatim, and binding named OUT parameters varies call to call.
	res, err := c.ExecContext(ctx, plan.SQLText, plan.Binds...)
	if err != nil {
		return Result{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, nil
	}
	return Result{RowsAffected: affected}, nil
}

func scanRow(rows *sql.Rows, cols []string) (Row, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(Row, len(cols))
	for i, col := range cols {
		row[col] = values[i]
	}
	return row, nil
}

// redactSQLForLog collapses whitespace for trace logging; bind values
// are never interpolated into the logged text, so there is nothing to
// redact beyond the caller's own SQL constants — this only keeps
// multi-line SQL readable in a single log line.
func redactSQLForLog(sqlText string) string {
	fields := strings.Fields(sqlText)
	return strings.Join(fields, " ")
}
