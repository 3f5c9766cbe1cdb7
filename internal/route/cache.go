package route

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cycleroute/cycleroute/pkg/polyline"
)

// CacheConfig holds configuration for the route cache.
type CacheConfig struct {
	// Capacity is the maximum number of entries (default: 10).
	// On overflow the oldest entry is evicted first.
	Capacity int

	// MaxAge is how long a cached route stays eligible for matching (default: 24h).
	MaxAge time.Duration

	// ProximityMeters is the maximum straight-line distance between a cached
	// endpoint and a new request's endpoint for a hit (default: 1000).
	ProximityMeters float64

	// GridSize is the fingerprint grid cell size in degrees (default: 0.01 ~ 1.1km).
	GridSize float64

	// Logger for cache operations.
	Logger zerolog.Logger
}

// Cache is a bounded, in-memory, time- and distance-windowed route cache.
// It maps a coarse request fingerprint to a previously computed route so
// near-identical requests skip provider calls. The cache is deliberately
// non-durable: geometry payloads are never persisted across restarts.
type Cache struct {
	capacity  int
	maxAge    time.Duration
	proximity float64
	gridSize  float64
	logger    zerolog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string // fingerprints in insertion order, oldest first
}

// cacheEntry wraps a route with its originating request and cache timestamp.
// Entries are owned exclusively by the cache.
type cacheEntry struct {
	route    *Route
	request  Request
	cachedAt time.Time
}

// NewCache creates a route cache.
func NewCache(cfg CacheConfig) *Cache {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 24 * time.Hour
	}
	proximity := cfg.ProximityMeters
	if proximity == 0 {
		proximity = 1000
	}
	gridSize := cfg.GridSize
	if gridSize == 0 {
		gridSize = 0.01
	}

	return &Cache{
		capacity:  capacity,
		maxAge:    maxAge,
		proximity: proximity,
		gridSize:  gridSize,
		logger:    cfg.Logger,
		entries:   make(map[string]*cacheEntry),
	}
}

// Get returns the cached route matching the request, or nil on a miss.
// A hit requires the same fingerprint, a cache timestamp within MaxAge, and
// both endpoints within ProximityMeters of the cached request's endpoints.
func (c *Cache) Get(req Request) *Route {
	key := c.Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	if time.Since(entry.cachedAt) > c.maxAge {
		// Expired entries are pruned opportunistically as they are encountered.
		c.removeLocked(key)
		return nil
	}

	if !c.withinProximity(req, entry.request) {
		return nil
	}

	c.logger.Debug().
		Str("fingerprint", key).
		Str("route_id", entry.route.ID).
		Msg("route cache hit")

	return entry.route
}

// Put stores a route keyed by the request's fingerprint, evicting the oldest
// entry when the cache is at capacity.
func (c *Cache) Put(req Request, route *Route) {
	key := c.Fingerprint(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredLocked()

	if _, exists := c.entries[key]; exists {
		c.removeLocked(key)
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.removeLocked(oldest)
		c.logger.Debug().
			Str("fingerprint", oldest).
			Msg("evicted oldest route cache entry")
	}

	c.entries[key] = &cacheEntry{
		route:    route,
		request:  req,
		cachedAt: time.Now(),
	}
	c.order = append(c.order, key)
}

// EvictExpired removes all entries older than MaxAge.
func (c *Cache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpiredLocked()
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint derives the coarse spatial cache key for a request: start and
// end quantized to the configured grid (~1km buckets by default). The key is
// built from the integer cell indices so any grid size yields distinct keys
// for distinct cells. The fingerprint is used only for cache matching, never
// for identity.
func (c *Cache) Fingerprint(req Request) string {
	startLat := int(math.Floor(req.Start.Lat / c.gridSize))
	startLon := int(math.Floor(req.Start.Lon / c.gridSize))
	endLat := int(math.Floor(req.End.Lat / c.gridSize))
	endLon := int(math.Floor(req.End.Lon / c.gridSize))

	return fmt.Sprintf("%d,%d:%d,%d", startLat, startLon, endLat, endLon)
}

func (c *Cache) withinProximity(a, b Request) bool {
	startDist := polyline.Distance(
		polyline.Coordinate{Lat: a.Start.Lat, Lon: a.Start.Lon},
		polyline.Coordinate{Lat: b.Start.Lat, Lon: b.Start.Lon},
	)
	endDist := polyline.Distance(
		polyline.Coordinate{Lat: a.End.Lat, Lon: a.End.Lon},
		polyline.Coordinate{Lat: b.End.Lat, Lon: b.End.Lon},
	)
	return startDist <= c.proximity && endDist <= c.proximity
}

func (c *Cache) evictExpiredLocked() {
	now := time.Now()
	expired := 0
	for key, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.maxAge {
			c.removeLocked(key)
			expired++
		}
	}
	if expired > 0 {
		c.logger.Debug().
			Int("expired_entries", expired).
			Msg("pruned expired route cache entries")
	}
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
