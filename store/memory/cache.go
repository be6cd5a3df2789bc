package memory

import (
	"sync"
	"time"

	"github.com/aerosync/vertiport-routing/domain"
)

const defaultFlightWindowCacheTTL = 30 * time.Second

type flightWindowEntry struct {
	paths   []domain.FlightPath
	updated time.Time
}

// FlightWindowCache caches the time-overlapping flight paths of
// paths_overlapping_in_time per time-window key to avoid redundant
// full-table scans. Grounded directly in
// the teacher's ContactWindowCache: same Get/Update/Invalidate/
// InvalidateAll/Stats shape, same TTL-default pattern, same copy-on-read
// defensive cloning.
type FlightWindowCache struct {
	mu       sync.RWMutex
	entries  map[string]flightWindowEntry
	ttl      time.Duration
	hits     int64
	misses   int64
	invalids int64
}

// NewFlightWindowCache creates a cache with the provided TTL; zero uses a
// default of 30s.
func NewFlightWindowCache(ttl time.Duration) *FlightWindowCache {
	if ttl <= 0 {
		ttl = defaultFlightWindowCacheTTL
	}
	return &FlightWindowCache{
		entries: make(map[string]flightWindowEntry),
		ttl:     ttl,
	}
}

func (c *FlightWindowCache) Get(key string) ([]domain.FlightPath, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(entry.updated) > c.ttl {
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return cloneFlightPaths(entry.paths), true
}

func (c *FlightWindowCache) Update(key string, paths []domain.FlightPath) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	c.entries[key] = flightWindowEntry{paths: cloneFlightPaths(paths), updated: time.Now()}
	c.mu.Unlock()
}

func (c *FlightWindowCache) Invalidate(key string) {
	if c == nil || key == "" {
		return
	}
	c.mu.Lock()
	if _, ok := c.entries[key]; ok {
		c.invalids++
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

func (c *FlightWindowCache) InvalidateAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]flightWindowEntry)
	c.invalids++
	c.mu.Unlock()
}

func (c *FlightWindowCache) Stats() (hits, misses, invalids int64) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	hits, misses, invalids = c.hits, c.misses, c.invalids
	c.mu.RUnlock()
	return
}

func (c *FlightWindowCache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *FlightWindowCache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func cloneFlightPaths(src []domain.FlightPath) []domain.FlightPath {
	if src == nil {
		return nil
	}
	clone := make([]domain.FlightPath, len(src))
	copy(clone, src)
	return clone
}
