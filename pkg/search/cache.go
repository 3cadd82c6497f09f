package search

import (
	"sync"
	"time"
)

type cacheKey struct {
	query string
	sort  Sort
	order Order
	page  int
}

type cacheEntry struct {
	results *Results
	expires time.Time
}

// responseCache keeps successful pages until their TTL elapses.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[cacheKey]cacheEntry
}

func newResponseCache(ttl time.Duration, now func() time.Time) *responseCache {
	return &responseCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func keyFor(req Request) cacheKey {
	return cacheKey{query: req.Query, sort: req.Sort, order: req.Order, page: req.Page}
}

func (c *responseCache) get(req Request) (*Results, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[keyFor(req)]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, keyFor(req))
		return nil, false
	}
	return entry.results, true
}

func (c *responseCache) put(req Request, res *Results) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[keyFor(req)] = cacheEntry{results: res, expires: now.Add(c.ttl)}
}

func (c *responseCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
