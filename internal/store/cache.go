package store

import (
	"errors"
	"sync"

	"github.com/aweris/symstash/internal/memdb"
	"github.com/aweris/symstash/internal/sdk"
)

// ErrStaleHandle is returned by AddIfAbsent when the identity was evicted
// after the caller read its generation.
var ErrStaleHandle = errors.New("symstash: stale handle")

// HandleCache shares opened databases between readers.
//
// Every identity has a generation that Remove advances. A handle opened under
// an older generation is never cached, so a reader racing with an eviction
// cannot put a mapping of a replaced file back.
//
// Removing an entry only drops the cache's reference; holders keep using their
// handle until they drop it themselves.
type HandleCache struct {
	mu    sync.RWMutex
	items map[sdk.Info]*memdb.Shared
	gens  map[sdk.Info]uint64
}

// NewHandleCache creates an empty cache.
func NewHandleCache() *HandleCache {
	return &HandleCache{
		items: make(map[sdk.Info]*memdb.Shared),
		gens:  make(map[sdk.Info]uint64),
	}
}

// Get returns the cached handle for info.
func (c *HandleCache) Get(info sdk.Info) (*memdb.Shared, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	db, ok := c.items[info]
	return db, ok
}

// Generation returns the current generation of info. Read it before deciding
// which file to open.
func (c *HandleCache) Generation(info sdk.Info) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[info]
}

// AddIfAbsent caches db unless another handle for info is already present,
// and returns the handle that ended up in the cache. It fails with
// ErrStaleHandle if info was evicted since gen was read.
func (c *HandleCache) AddIfAbsent(info sdk.Info, db *memdb.Shared, gen uint64) (cached *memdb.Shared, added bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[info] != gen {
		return nil, false, ErrStaleHandle
	}
	if existing, ok := c.items[info]; ok {
		return existing, false, nil
	}
	c.items[info] = db
	return db, true, nil
}

// Remove evicts info from the cache (not from disk) and starts a new
// generation for it.
func (c *HandleCache) Remove(info sdk.Info) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[info]++
	_, ok := c.items[info]
	delete(c.items, info)
	return ok
}

// Len returns the number of cached handles.
func (c *HandleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

