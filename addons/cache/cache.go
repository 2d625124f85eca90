package cache

import (
	"sync"
	"time"
)

// Cache is the storage contract shared by the cache middleware and the
// sessions addon. A zero TTL means the entry never expires.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Flush()
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process Cache backed by a map. Expired entries are
// reclaimed lazily on Get and periodically by a background sweeper.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	sweepInterval time.Duration
}

// WithSweepInterval sets how often the background sweeper runs.
// The default is five minutes.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(cfg *memoryConfig) {
		cfg.sweepInterval = d
	}
}

// NewMemoryCache creates an in-memory cache and starts its sweeper.
// Call Close when the cache is no longer needed.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := memoryConfig{sweepInterval: 5 * time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &MemoryCache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go c.sweep(cfg.sweepInterval)
	return c
}

// Get retrieves a value. Expired entries are removed and reported as misses.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores a value. A ttl of zero keeps the entry until deleted.
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Delete removes a single entry.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes every entry.
func (c *MemoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Close stops the background sweeper. The cache remains usable afterwards,
// but expired entries are then reclaimed only on Get.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
