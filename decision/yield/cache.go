package yield

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCacheTTL bounds how long an irradiance lookup is reused.
const DefaultCacheTTL = 24 * time.Hour

// CacheKey is a request rounded to lookup precision: coordinates and capacity
// to 0.01, tilt to 0.1. Values are stored scaled so keys compare exactly.
type CacheKey struct {
	Lat      int64
	Lon      int64
	Capacity int64
	Tilt     int64
}

// KeyFor rounds a request into a cache key.
func KeyFor(req Request) CacheKey {
	return CacheKey{
		Lat:      int64(math.Round(req.Latitude * 100)),
		Lon:      int64(math.Round(req.Longitude * 100)),
		Capacity: int64(math.Round(req.CapacityKW * 100)),
		Tilt:     int64(math.Round(req.TiltDeg * 10)),
	}
}

type cacheEntry struct {
	value    Estimate
	storedAt time.Time
}

// Cache is a TTL cache of estimates. Expired entries are evicted when read.
type Cache struct {
	mu      sync.Mutex
	entries map[CacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache; a non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[CacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns a live entry for key.
func (c *Cache) Get(key CacheKey) (Estimate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Estimate{}, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return Estimate{}, false
	}
	return e.value.clone(), true
}

// Put stores value under key with the current time.
func (c *Cache) Put(key CacheKey, value Estimate) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value.clone(), storedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CachedProvider is a cache-aside wrapper; only successful lookups are stored.
type CachedProvider struct {
	next   Provider
	cache  *Cache
	logger zerolog.Logger
}

// NewCachedProvider wraps next with cache.
func NewCachedProvider(next Provider, cache *Cache, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, logger: logger}
}

// Estimate implements Provider.
func (p *CachedProvider) Estimate(ctx context.Context, req Request) (Estimate, error) {
	key := KeyFor(req)
	if est, ok := p.cache.Get(key); ok {
		p.logger.Debug().Interface("key", key).Msg("yield cache hit")
		return est, nil
	}
	p.logger.Debug().Interface("key", key).Msg("yield cache miss")

	est, err := p.next.Estimate(ctx, req)
	if err != nil {
		return Estimate{}, err
	}
	p.cache.Put(key, est)
	return est, nil
}
