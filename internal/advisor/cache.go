package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/Shun-123/shadowverse-2pick/internal/cards"
)

const (
	// DefaultCacheTTL is how long a cached card stays valid.
	DefaultCacheTTL = 600 * time.Second

	// DefaultCacheSize is the entry cap before eviction kicks in.
	DefaultCacheSize = 1000
)

// LookupCache wraps a cards.Source with an in-memory TTL cache. It keeps
// repeated deck analysis during an active draft from hitting the store on
// every pick.
type LookupCache struct {
	src     cards.Source
	entries map[string]*cacheEntry
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	stats   CacheStats
}

type cacheEntry struct {
	card      *cards.Card
	timestamp time.Time
}

// CacheStats tracks cache performance counters.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// NewLookupCache creates a caching wrapper around src.
// ttl <= 0 and maxSize <= 0 fall back to the defaults.
func NewLookupCache(src cards.Source, ttl time.Duration, maxSize int) *LookupCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &LookupCache{
		src:     src,
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// GetCard returns the cached card when fresh, otherwise fetches from the
// underlying source and caches the result. Unknown ids (nil, nil) are not
// cached so a later import becomes visible immediately.
func (c *LookupCache) GetCard(ctx context.Context, cardID string) (*cards.Card, error) {
	c.mu.RLock()
	entry, ok := c.entries[cardID]
	c.mu.RUnlock()

	if ok && time.Since(entry.timestamp) <= c.ttl {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		return entry.card, nil
	}

	card, err := c.src.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Misses++
	if card == nil {
		delete(c.entries, cardID)
		return nil, nil
	}
	if len(c.entries) >= c.maxSize {
		if _, exists := c.entries[cardID]; !exists {
			c.evictOldest()
		}
	}
	c.entries[cardID] = &cacheEntry{card: card, timestamp: time.Now()}
	return card, nil
}

// Clear removes all entries.
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Stats returns a snapshot of the cache counters.
func (c *LookupCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.Size = len(c.entries)
	return stats
}

// HitRate returns the cache hit rate as a percentage.
func (c *LookupCache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(c.stats.Hits) / float64(total) * 100.0
}

// evictOldest removes the entry with the oldest timestamp.
// Caller must hold the write lock.
func (c *LookupCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.timestamp
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.stats.Evictions++
	}
}
