package exec

import (
	"container/list"
	"context"
	"database/sql"
	"sync"
)

// stmtCacheCapacity is the per-connection LRU size (spec.md §4.5: "cache
// ≈ 50"). Implemented explicitly over container/list rather than relying
// on driver-implicit statement caching, per the redesign note that JDBC
// -style implicit caching is replaced with an explicit per-connection
// LRU.
const stmtCacheCapacity = 50

type stmtCacheEntry struct {
	sqlText string
	stmt    *sql.Stmt
}

// stmtCache is an LRU of prepared statements keyed by sql_text, scoped to
// one pooled connection. It is invalidated (emptied) whenever the
// connection it belongs to is reset or destroyed.
type stmtCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element
}

func newStmtCache() *stmtCache {
	return newStmtCacheWithCapacity(stmtCacheCapacity)
}

func newStmtCacheWithCapacity(capacity int) *stmtCache {
	return &stmtCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// prepare returns a cached *sql.Stmt for sqlText, preparing and caching a
// new one (evicting the least-recently-used entry if at capacity) if
// absent.
func (c *stmtCache) prepare(ctx context.Context, conn *sql.Conn, sqlText string) (*sql.Stmt, error) {
	c.mu.Lock()
	if el, ok := c.index[sqlText]; ok {
		c.ll.MoveToFront(el)
		stmt := el.Value.(*stmtCacheEntry).stmt
		c.mu.Unlock()
		return stmt, nil
	}
	c.mu.Unlock()

	stmt, err := conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have raced us to prepare the same statement;
	// prefer the one already cached and close ours to avoid a leak.
	if el, ok := c.index[sqlText]; ok {
		c.ll.MoveToFront(el)
		existing := el.Value.(*stmtCacheEntry).stmt
		stmt.Close()
		return existing, nil
	}

	el := c.ll.PushFront(&stmtCacheEntry{sqlText: sqlText, stmt: stmt})
	c.index[sqlText] = el

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.evict(oldest)
		}
	}

	return stmt, nil
}

func (c *stmtCache) evict(el *list.Element) {
	entry := el.Value.(*stmtCacheEntry)
	c.ll.Remove(el)
	delete(c.index, entry.sqlText)
	entry.stmt.Close()
}

// Close closes every cached statement and empties the cache, used when
// the owning connection is reset or destroyed.
func (c *stmtCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Front(); el != nil; el = el.Next() {
		el.Value.(*stmtCacheEntry).stmt.Close()
	}
	c.ll.Init()
	c.index = make(map[string]*list.Element)
}
