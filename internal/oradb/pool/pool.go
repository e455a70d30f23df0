// Package pool implements a bounded, FIFO-waiting connection pool over a
// shared *sql.DB (driver: github.com/sijms/go-ora/v2), with leak
// detection and scoped acquisition that guarantees release on every exit
// path.
package pool

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oracle-mcp/oracle-mcp-server/internal/config"
	"github.com/oracle-mcp/oracle-mcp-server/internal/errtax"
	"github.com/oracle-mcp/oracle-mcp-server/internal/retry"
)

// isConnectionBroken reports whether err indicates the underlying
// connection itself is unusable, as opposed to an ordinary query/business
// error that leaves the connection fine to reuse.
func isConnectionBroken(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}

// state is an entry's position in the idle -> in-use -> idle|broken ->
// closing -> removed state machine.
type state int

const (
	stateIdle state = iota
	stateInUse
	stateBroken
	stateClosing
)

// entry wraps one pooled *sql.Conn with bookkeeping for the lifetime,
// idle-timeout, and leak-detection rules.
type entry struct {
	conn          *sql.Conn
	state         state
	createdAt     time.Time
	lastUsedAt    time.Time
	acquiredAt    time.Time
	borrowerToken string
}

// Pool is a bounded connection pool. Acquire/Release manage entries
// directly; WithConnection is the preferred scoped-acquisition API since
// it guarantees release on every exit path, including panics.
type Pool struct {
	db     *sql.DB
	cfg    config.PoolConfig
	logger zerolog.Logger

	mu      sync.Mutex
	entries []*entry
	tickets chan struct{} // one buffered slot per max_size, acts as the FIFO wait queue

	// closeHook, when set, runs before any pooled connection is closed —
	// expired, broken, or swept up by Close — letting collaborators that
	// hold per-connection state (the Execution Engine's statement cache)
	// release it. Set once at wiring time, before the pool serves calls.
	closeHook func(*sql.Conn)

	closeOnce sync.Once
	stopLeak  chan struct{}
}

// SetCloseHook registers fn to run before each pooled connection is
// destroyed. Must be called during composition, before the pool is used.
func (p *Pool) SetCloseHook(fn func(*sql.Conn)) {
	p.closeHook = fn
}

// destroyConn runs the close hook (if any) and closes conn.
func (p *Pool) destroyConn(conn *sql.Conn, msg string) {
	if p.closeHook != nil {
		p.closeHook(conn)
	}
	errtax.DeferClose(p.logger, conn, msg)
}

// Stats is the snapshot returned by Pool.Stats, grounded on spec.md §8's
// testable pool-shaped counters.
type Stats struct {
	Created int
	Idle    int
	InUse   int
	MaxSize int
}

// New builds a Pool over db using cfg for sizing and timeout behavior. It
// starts the leak-detection goroutine; callers must call Close to stop
// it.
func New(db *sql.DB, cfg config.PoolConfig, logger zerolog.Logger) *Pool {
	p := &Pool{
		db:       db,
		cfg:      cfg,
		logger:   logger.With().Str("component", "pool").Logger(),
		tickets:  make(chan struct{}, cfg.MaxSize),
		stopLeak: make(chan struct{}),
	}
	for i := 0; i < cfg.MaxSize; i++ {
		p.tickets <- struct{}{}
	}
	go p.leakDetectionLoop()
	return p
}

// Conn is the handle returned to a caller for the duration of one
// acquisition.
type Conn struct {
	*sql.Conn
	pool  *Pool
	entry *entry
}

// Acquire borrows a connection, creating one if the pool has capacity and
// no idle entry is usable, or waiting on the FIFO queue (via tickets) up
// to cfg.AcquireTimeout. Release must be called exactly once on the
// returned Conn.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout())
	defer cancel()

	select {
	case <-p.tickets:
	case <-acquireCtx.Done():
		return nil, errtax.New(errtax.KindTimeout, "E_POOL_TIMEOUT", "timed out waiting for a pool connection")
	}

	e, err := p.takeIdleOrCreate(ctx)
	if err != nil {
		p.tickets <- struct{}{} // give the ticket back, acquisition failed
		return nil, err
	}

	p.mu.Lock()
	e.state = stateInUse
	e.acquiredAt = time.Now()
	e.borrowerToken = uuid.NewString()
	p.mu.Unlock()

	return &Conn{Conn: e.conn, pool: p, entry: e}, nil
}

// takeIdleOrCreate pops a usable idle entry, evicting and closing any
// expired idle entries it encounters along the way, or opens a new one.
// The ticket channel acquired by the caller already bounds concurrent
// holders to max_size, so evicted entries always leave room for a new
// one without exceeding the pool's invariant.
func (p *Pool) takeIdleOrCreate(ctx context.Context) (*entry, error) {
	var expired []*entry

	p.mu.Lock()
	var chosen *entry
	live := p.entries[:0]
	for _, e := range p.entries {
		if e.state == stateIdle && p.expiredIdle(e) {
			expired = append(expired, e)
			continue
		}
		if chosen == nil && e.state == stateIdle {
			chosen = e
			live = append(live, e)
			continue
		}
		live = append(live, e)
	}
	p.entries = live
	p.mu.Unlock()

	for _, e := range expired {
		p.destroyConn(e.conn, "closing expired idle pooled connection")
	}

	if chosen != nil {
		return chosen, nil
	}

	conn, err := p.openConn(ctx)
	if err != nil {
		return nil, errtax.Wrap(errtax.KindDriver, "E_POOL_CONNECT", "failed to open a new pooled connection", err)
	}
	e := &entry{conn: conn, createdAt: time.Now(), lastUsedAt: time.Now(), state: stateIdle}

	p.mu.Lock()
	p.entries = append(p.entries, e)
	p.mu.Unlock()

	return e, nil
}

// openConn opens a new driver connection, retrying with exponential backoff
// when the pool is configured to do so. cfg.ReconnectMaxRetries of zero (the
// default for configs that never set it, including every test in this
// package) means try once and report whatever error the driver gives.
func (p *Pool) openConn(ctx context.Context) (*sql.Conn, error) {
	if p.cfg.ReconnectMaxRetries <= 0 {
		return p.db.Conn(ctx)
	}

	rcfg := retry.Config{
		MaxRetries:     p.cfg.ReconnectMaxRetries,
		InitialBackoff: p.cfg.ReconnectInitialDelay,
		MaxBackoff:     p.cfg.ReconnectMaxDelay,
		Jitter:         0.2,
	}

	var conn *sql.Conn
	err := retry.Do(ctx, rcfg, func() error {
		c, err := p.db.Conn(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// expiredByLifetime reports whether e has exceeded max_lifetime. Lifetime
// is measured from creation regardless of the entry's current state, so
// it applies equally to idle and in-use connections.
func (p *Pool) expiredByLifetime(e *entry) bool {
	return p.cfg.MaxLifetime() > 0 && time.Since(e.createdAt) > p.cfg.MaxLifetime()
}

// expiredIdle reports whether an idle entry has exceeded max_lifetime or
// sat unused past idle_timeout. lastUsedAt is only stamped when an entry
// returns to idle (Release), so this is only meaningful for entries
// currently in stateIdle — applying it to an in-use entry would count the
// call's own duration as idle time.
func (p *Pool) expiredIdle(e *entry) bool {
	if p.expiredByLifetime(e) {
		return true
	}
	return p.cfg.IdleTimeout() > 0 && time.Since(e.lastUsedAt) > p.cfg.IdleTimeout()
}

// Release returns c to the pool. If the connection is broken or has
// exceeded its max lifetime, it is destroyed instead of returned to
// idle, per spec.md §4.4's state machine. idle_timeout is not checked
// here: the entry was just in use, not idle, however long the call took.
func (p *Pool) Release(c *Conn, brokenHint error) {
	p.mu.Lock()
	e := c.entry
	broken := brokenHint != nil || p.expiredByLifetime(e)
	if broken {
		e.state = stateClosing
	} else {
		e.state = stateIdle
		e.lastUsedAt = time.Now()
	}
	p.mu.Unlock()

	if broken {
		p.removeEntry(e)
	}

	p.tickets <- struct{}{}
}

func (p *Pool) removeEntry(e *entry) {
	p.destroyConn(e.conn, "closing broken pooled connection")

	p.mu.Lock()
	defer p.mu.Unlock()
	for i, ex := range p.entries {
		if ex == e {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			break
		}
	}
}

// WithConnection acquires a connection, invokes fn, and guarantees
// release on every exit path — including fn panicking — mirroring the
// teacher's DeferClose-style guaranteed-cleanup idiom. Only a connection
// -level failure (driver.ErrBadConn, sql.ErrConnDone, or a panic) marks
// the entry broken; an ordinary business-logic error from fn returns the
// connection to idle like any other error would.
func (p *Pool) WithConnection(ctx context.Context, fn func(*Conn) error) (err error) {
	c, acquireErr := p.Acquire(ctx)
	if acquireErr != nil {
		return acquireErr
	}

	defer func() {
		if r := recover(); r != nil {
			p.Release(c, fmt.Errorf("panic: %v", r))
			panic(r)
		}
		var brokenHint error
		if isConnectionBroken(err) {
			brokenHint = err
		}
		p.Release(c, brokenHint)
	}()

	err = fn(c)
	return err
}

// Stats returns a point-in-time snapshot of pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Stats{MaxSize: p.cfg.MaxSize, Created: len(p.entries)}
	for _, e := range p.entries {
		switch e.state {
		case stateIdle:
			s.Idle++
		case stateInUse:
			s.InUse++
		}
	}
	return s
}

// Close stops the leak-detection goroutine and closes every pooled
// connection.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() { close(p.stopLeak) })

	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, e := range p.entries {
		if p.closeHook != nil {
			p.closeHook(e.conn)
		}
		if err := e.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.entries = nil
	return firstErr
}

func (p *Pool) leakDetectionLoop() {
	interval := p.cfg.LeakThreshold() / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopLeak:
			return
		case <-ticker.C:
			p.scanForLeaks()
		}
	}
}

func (p *Pool) scanForLeaks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.state != stateInUse {
			continue
		}
		if time.Since(e.acquiredAt) > p.cfg.LeakThreshold() {
			p.logger.Warn().
				Str("borrower_token", e.borrowerToken).
				Dur("held_for", time.Since(e.acquiredAt)).
				Msg("pooled connection held past leak_detection_threshold")
		}
	}
}
