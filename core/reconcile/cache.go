package reconcile

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"gridsync/core/table"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds one decoded table.
type cacheEntry struct {
	// Table is the decoded table.
	Table *table.Table

	// Built is the timestamp when this entry was read.
	Built time.Time
}

// ReadCache memoizes reads per worksheet for a short TTL and coalesces concurrent reads of the
// same key into one remote round trip. Cached tables are shared and must not be modified.
type ReadCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	gens    map[string]uint64
	sf      singleflight.Group
	ttl     time.Duration
}

// NewReadCache creates a cache. A zero TTL disables memoization but still coalesces reads.
func NewReadCache(ttl time.Duration) *ReadCache {
	return &ReadCache{
		entries: make(map[string]*cacheEntry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
	}
}

// CacheKey returns the cache key of a read of worksheet with the given options.
func CacheKey(worksheet string, ro ReadOptions) string {
	return worksheet + "|" + ro.IndexColumn + "|" + strings.Join(ro.Columns, ",")
}

func (c *ReadCache) expired(e *cacheEntry) bool {
	if c.ttl == 0 {
		return true // No caching
	}
	return time.Since(e.Built) > c.ttl
}

func worksheetOf(key string) string {
	worksheet, _, _ := strings.Cut(key, "|")
	return worksheet
}

// GetOrRead returns the cached table for key, or calls read when it is missing or expired.
// Uses singleflight to prevent read stampedes. Reads only join flights started after the last
// Invalidate of their worksheet, and a read overtaken by Invalidate is returned but not stored.
func (c *ReadCache) GetOrRead(ctx context.Context, key string, read func(context.Context) (*table.Table, error)) (*table.Table, error) {
	worksheet := worksheetOf(key)

	// Fast path: check if entry exists and is fresh
	c.mu.RLock()
	entry, exists := c.entries[key]
	gen := c.gens[worksheet]
	c.mu.RUnlock()

	if exists && !c.expired(entry) {
		return entry.Table, nil
	}

	// Slow path: read using singleflight to prevent stampedes
	flight := key + "#" + strconv.FormatUint(gen, 10)
	result, err, _ := c.sf.Do(flight, func() (interface{}, error) {
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !c.expired(entry) {
			return entry.Table, nil
		}

		t, err := read(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			if c.gens[worksheet] == gen {
				c.entries[key] = &cacheEntry{Table: t, Built: time.Now()}
			}
			c.mu.Unlock()
		}

		return t, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*table.Table), nil
}

// Invalidate drops every cached read of worksheet, including reads still in flight.
func (c *ReadCache) Invalidate(worksheet string) {
	prefix := worksheet + "|"
	c.mu.Lock()
	c.gens[worksheet]++
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
