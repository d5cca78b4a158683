package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"SignalPulse/internal/domain/models"
)

// DefaultCacheCapacity bounds the computation cache.
const DefaultCacheCapacity = 80

// Fingerprint derives a cheap cache key standing in for full series
// equality: length, first/last timestamps, and the last close. Any appended
// candle changes the fingerprint, so stale entries are never reused.
func Fingerprint(cs []models.Candle) string {
	if len(cs) == 0 {
		return "empty"
	}
	first := cs[0]
	last := cs[len(cs)-1]
	return fmt.Sprintf("%d:%d:%d:%.8f", len(cs), first.Timestamp.UnixNano(), last.Timestamp.UnixNano(), last.Close)
}

type cacheEntry struct {
	fingerprint string
	computedAt  time.Time
	snapshot    models.IndicatorSnapshot
}

// SnapshotCache memoizes indicator snapshots keyed by series fingerprint.
// Read-through: on miss the caller computes and inserts. When capacity is
// exceeded the oldest quarter of entries by insertion time is evicted.
type SnapshotCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	capacity int
	now      func() time.Time

	hits   uint64
	misses uint64
}

func NewSnapshotCache(capacity int) *SnapshotCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &SnapshotCache{
		entries:  make(map[string]*cacheEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached snapshot for fingerprint, if present.
func (c *SnapshotCache) Get(fingerprint string) (models.IndicatorSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fingerprint]
	if !ok {
		c.misses++
		return models.IndicatorSnapshot{}, false
	}
	c.hits++
	return e.snapshot, true
}

// Put inserts a snapshot, evicting the oldest ~25% of entries if the cache
// is over capacity.
func (c *SnapshotCache) Put(fingerprint string, snap models.IndicatorSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = &cacheEntry{
		fingerprint: fingerprint,
		computedAt:  c.now(),
		snapshot:    snap,
	}
	if len(c.entries) > c.capacity {
		c.evictOldest()
	}
}

// Invalidate drops a single fingerprint.
func (c *SnapshotCache) Invalidate(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fingerprint)
}

// Stats reports cumulative hit/miss counts.
func (c *SnapshotCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SnapshotCache) evictOldest() {
	all := make([]*cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].computedAt.Before(all[j].computedAt) })

	drop := len(all) / 4
	if drop < 1 {
		drop = 1
	}
	for _, e := range all[:drop] {
		delete(c.entries, e.fingerprint)
	}
}
