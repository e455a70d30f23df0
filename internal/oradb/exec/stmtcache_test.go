package exec

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCacheEvictsLeastRecentlyUsed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		mock.ExpectPrepare("SELECT .*")
	}

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	cache := newStmtCacheWithCapacity(2)

	s1, err := cache.prepare(context.Background(), conn, "SELECT 1 FROM DUAL")
	require.NoError(t, err)
	_, err = cache.prepare(context.Background(), conn, "SELECT 2 FROM DUAL")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.ll.Len())

	// Preparing a third distinct statement must evict the LRU entry
	// (SELECT 1, since SELECT 2 was accessed more recently).
	_, err = cache.prepare(context.Background(), conn, "SELECT 3 FROM DUAL")
	require.NoError(t, err)

	assert.Equal(t, 2, cache.ll.Len())
	_, stillCached := cache.index["SELECT 1 FROM DUAL"]
	assert.False(t, stillCached, "least-recently-used entry should have been evicted")
	require.NoError(t, mock.ExpectationsWereMet())

	_ = s1
}

func TestStmtCacheReturnsSameStatementOnHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPrepare("SELECT 1 FROM DUAL")

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	cache := newStmtCache()
	first, err := cache.prepare(context.Background(), conn, "SELECT 1 FROM DUAL")
	require.NoError(t, err)
	second, err := cache.prepare(context.Background(), conn, "SELECT 1 FROM DUAL")
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStmtCacheCloseClearsEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectPrepare("SELECT 1 FROM DUAL")

	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	cache := newStmtCache()
	_, err = cache.prepare(context.Background(), conn, "SELECT 1 FROM DUAL")
	require.NoError(t, err)

	cache.Close()
	assert.Equal(t, 0, cache.ll.Len())
	assert.Empty(t, cache.index)
}
