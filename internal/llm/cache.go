package llm

import (
	"sync"
	"time"
)

// cacheEntry represents a cached relevance judgment.
type cacheEntry struct {
	expiry   time.Time
	judgment JudgmentResponse
}

// judgmentCache provides thread-safe caching for relevance judgments. The
// same (category, task) pair asked twice within the TTL returns the cached
// answer without another API call.
type judgmentCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newJudgmentCache creates a new cache with the specified TTL.
func newJudgmentCache(ttl time.Duration) *judgmentCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &judgmentCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// get retrieves a judgment from the cache if it exists and hasn't expired.
func (c *judgmentCache) get(key string) (JudgmentResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return JudgmentResponse{}, false
	}

	if time.Now().After(entry.expiry) {
		return JudgmentResponse{}, false
	}

	return entry.judgment, true
}

// set stores a judgment in the cache.
func (c *judgmentCache) set(key string, judgment JudgmentResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		judgment: judgment,
		expiry:   time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *judgmentCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// size returns the number of entries in the cache.
func (c *judgmentCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *judgmentCache) Close() {
	close(c.stopCh)
}
