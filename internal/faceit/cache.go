package faceit

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// ResponseCache provides in-memory caching for FACEIT API responses.
// Profile and stats payloads are stable across a session while live
// match state is not, so callers decide which lookups go through it.
type ResponseCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewResponseCache creates a new response cache
func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Get retrieves a cached response
func (rc *ResponseCache) Get(key string) (Document, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if raw, found := rc.cache.Get(key); found {
		if doc, ok := raw.(Document); ok {
			rc.hitCount++
			RecordCacheHit()
			return doc, true
		}
	}

	rc.missCount++
	RecordCacheMiss()
	return nil, false
}

// Set stores a response in cache
func (rc *ResponseCache) Set(key string, doc Document) {
	rc.cache.Set(key, doc, rc.ttl)
}

// Clear flushes the entire cache
func (rc *ResponseCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Flush()
	rc.hitCount = 0
	rc.missCount = 0
}

// Stats returns cache statistics
func (rc *ResponseCache) Stats() (hits, misses uint64, ratio float64) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	hits = rc.hitCount
	misses = rc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (rc *ResponseCache) ItemCount() int {
	return rc.cache.ItemCount()
}
