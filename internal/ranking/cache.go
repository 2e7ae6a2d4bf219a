package ranking

import "sync"

// Cache memoizes parsed ranking files by path for the lifetime of the
// process. There is no eviction or invalidation.
// All operations are thread-safe.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]Track
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]Track)}
}

// Get returns the tracks cached for path.
func (c *Cache) Get(path string) ([]Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tracks, ok := c.entries[path]
	return tracks, ok
}

// Put stores tracks for path. Callers must not modify tracks afterwards.
func (c *Cache) Put(path string, tracks []Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = tracks
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
