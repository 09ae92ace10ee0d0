package api

import (
	"sync"
	"time"

	"cuisinemap/pkg/places"
)

type cacheEntry struct {
	places   []places.Place
	storedAt time.Time
}

// placeCache keeps live search results for a fixed time. Expired entries are
// replaced on the next put for the same key.
type placeCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func newPlaceCache(ttl time.Duration, now func() time.Time) *placeCache {
	return &placeCache{ttl: ttl, now: now, entries: make(map[string]cacheEntry)}
}

func (c *placeCache) get(key string) ([]places.Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.places, true
}

func (c *placeCache) put(key string, p []places.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{places: p, storedAt: c.now()}
}
