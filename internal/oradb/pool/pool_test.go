package pool

import (
	"context"
	"database/sql"
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
)

func testPoolConfig() config.PoolConfig {
	return config.PoolConfig{
		MaxSize:          2,
		MinIdle:          0,
		AcquireTimeoutMS: 50,
		MaxLifetimeMS:    0,
		IdleTimeoutMS:    0,
		LeakThresholdMS:  1000,
	}
}

func TestAcquireReleaseStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.InUse)
	assert.Equal(t, 0, stats.Idle)

	p.Release(c, nil)

	stats = p.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 0, stats.InUse)
	assert.Equal(t, 1, stats.Idle)
}

func TestAcquireReusesIdleConnection(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	c1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(c1, nil)

	c2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, p.Stats().Created, "second acquire should reuse the idle entry, not create a new one")
	p.Release(c2, nil)
}

func TestAcquireTimesOutWhenExhausted(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testPoolConfig()
	cfg.MaxSize = 1
	p := New(db, cfg, zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)

	_, err = p.Acquire(context.Background())
	require.Error(t, err)
	e, ok := errtax.As(err)
	require.True(t, ok)
	assert.Equal(t, errtax.KindTimeout, e.Kind)
	assert.Equal(t, "E_POOL_TIMEOUT", e.Code)

	p.Release(c, nil)
}

func TestReleaseDestroysBrokenConnection(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(c, errors.New("connection broken"))

	stats := p.Stats()
	assert.Equal(t, 0, stats.Created, "broken connection must not return to idle")
}

func TestWithConnectionReleasesOnSuccessAndError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	err = p.WithConnection(context.Background(), func(c *Conn) error {
		assert.NotNil(t, c.Conn)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats().Idle)

	boom := errors.New("boom")
	err = p.WithConnection(context.Background(), func(c *Conn) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	// An ordinary business-logic error from fn is not a connection
	// failure, so the entry returns to idle rather than being destroyed.
	stats := p.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Idle)
}

func TestWithConnectionDestroysOnBadConn(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	err = p.WithConnection(context.Background(), func(c *Conn) error {
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 0, p.Stats().Created, "driver.ErrBadConn must destroy the connection")
}

func TestCloseHookRunsOnBrokenConnectionDestroy(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	hookCalls := 0
	p.SetCloseHook(func(conn *sql.Conn) {
		assert.NotNil(t, conn)
		hookCalls++
	})

	err = p.WithConnection(context.Background(), func(c *Conn) error {
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, driver.ErrBadConn)
	assert.Equal(t, 1, hookCalls, "destroying a broken connection must run the close hook")
}

func TestCloseHookRunsOnPoolClose(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())

	hookCalls := 0
	p.SetCloseHook(func(conn *sql.Conn) { hookCalls++ })

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(c, nil)

	require.NoError(t, p.Close())
	assert.Equal(t, 1, hookCalls, "Close must run the hook for every remaining entry")
}

func TestWithConnectionReleasesOnPanic(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := New(db, testPoolConfig(), zerolog.Nop())
	defer p.Close()

	assert.Panics(t, func() {
		_ = p.WithConnection(context.Background(), func(c *Conn) error {
			panic("boom")
		})
	})

	// The ticket must have been returned despite the panic, so a
	// subsequent acquire should succeed rather than time out.
	c, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(c, nil)
}

func TestReleaseDoesNotApplyIdleTimeoutToInUseDuration(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testPoolConfig()
	cfg.IdleTimeoutMS = 5
	p := New(db, cfg, zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)

	// Held in use well past idle_timeout. A single long call must not be
	// judged idle-expired on release.
	time.Sleep(20 * time.Millisecond)
	p.Release(c, nil)

	stats := p.Stats()
	assert.Equal(t, 1, stats.Created, "a connection held in use past idle_timeout must survive Release")
	assert.Equal(t, 1, stats.Idle)
}

func TestTakeIdleOrCreateEvictsIdleTimedOutEntry(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testPoolConfig()
	cfg.IdleTimeoutMS = 5
	p := New(db, cfg, zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(c, nil)

	time.Sleep(20 * time.Millisecond)

	c2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats().Created, "a genuinely idle entry past idle_timeout must be evicted, then recreated")
	p.Release(c2, nil)
}

func TestLeakDetectionLogsWithoutReclaiming(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg := testPoolConfig()
	cfg.LeakThresholdMS = 1
	p := New(db, cfg, zerolog.Nop())
	defer p.Close()

	c, err := p.Acquire(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	stats := p.Stats()
	assert.Equal(t, 1, stats.InUse, "leak detector must not forcibly reclaim the connection")

	p.Release(c, nil)
}
