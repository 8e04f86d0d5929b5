package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a TTL layer over a bounded LRU, sized for whole response pages
// rather than entities. Expired entries are dropped lazily on lookup.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
}

type cacheEntry struct {
	value    interface{}
	deadline time.Time
}

var pages = mustCache(256)

// PageCache returns the process-wide cache for hot listing pages.
func PageCache() *Cache {
	return pages
}

func mustCache(size int) *Cache {
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		panic(err)
	}
	return &Cache{entries: entries}
}

func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	c.entries.Add(key, cacheEntry{value: value, deadline: time.Now().Add(ttl)})
}

// Lookup returns the cached value, or false when the key is absent or past
// its deadline.
func (c *Cache) Lookup(key string) (interface{}, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.deadline) {
		c.entries.Remove(key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Invalidate(key string) {
	c.entries.Remove(key)
}
