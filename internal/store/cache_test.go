package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/sdk"
)

func openTestDB(t *testing.T, info sdk.Info) *memdb.Shared {
	t.Helper()
	path := DatabasePath(t.TempDir(), info)
	require.NoError(t, memdb.WriteFile(path, info, []byte("body")))
	db, err := memdb.Open(path)
	require.NoError(t, err)
	return db.Share()
}

func TestHandleCacheFirstInsertWins(t *testing.T) {
	info := mustRemote(t, "iOS_10.2.1_14D27", "x").Info
	c := NewHandleCache()

	first := openTestDB(t, info)
	second := openTestDB(t, info)

	got, added, err := c.AddIfAbsent(info, first, c.Generation(info))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Same(t, first, got)

	got, added, err = c.AddIfAbsent(info, second, c.Generation(info))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Same(t, first, got)

	cached, ok := c.Get(info)
	require.True(t, ok)
	assert.Same(t, first, cached)
}

func TestHandleCacheRemoveKeepsHandleUsable(t *testing.T) {
	info := mustRemote(t, "iOS_10.2.1_14D27", "x").Info
	c := NewHandleCache()
	db := openTestDB(t, info)
	_, _, err := c.AddIfAbsent(info, db, 0)
	require.NoError(t, err)

	assert.True(t, c.Remove(info))
	assert.False(t, c.Remove(info))
	assert.Equal(t, 0, c.Len())

	buf := make([]byte, 4)
	_, err = db.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "body", string(buf))
}

func TestHandleCacheRejectsHandleFromEvictedGeneration(t *testing.T) {
	info := mustRemote(t, "iOS_10.2.1_14D27", "x").Info
	c := NewHandleCache()

	gen := c.Generation(info)
	inflight := openTestDB(t, info)
	c.Remove(info)

	_, added, err := c.AddIfAbsent(info, inflight, gen)
	require.ErrorIs(t, err, ErrStaleHandle)
	assert.False(t, added)
	assert.Equal(t, 0, c.Len())

	fresh := openTestDB(t, info)
	got, added, err := c.AddIfAbsent(info, fresh, c.Generation(info))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Same(t, fresh, got)
}

func TestHandleCacheConcurrentAdd(t *testing.T) {
	info := mustRemote(t, "iOS_10.2.1_14D27", "x").Info
	c := NewHandleCache()

	const n = 8
	dbs := make([]*memdb.Shared, n)
	for i := range dbs {
		dbs[i] = openTestDB(t, info)
	}

	results := make([]*memdb.Shared, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _, _ = c.AddIfAbsent(info, dbs[i], 0)
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, c.Len())
}
