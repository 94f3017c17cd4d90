package loader

import (
	"sync"
	"time"

	"github.com/clubworks/hookconf/pkg/types"
)

// DefaultCacheTTL is how long a resolved configuration stays cached per
// environment.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// cache is a process-local map with lazy, read-time expiry. Concurrent
// populates race last-writer-wins; the lock only keeps map access itself
// safe.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newCache(ttl time.Duration) *cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the cached result for an environment; an expired entry is
// treated as a miss.
func (c *cache) get(environment string) (*Result, bool) {
	c.mu.RLock()
	entry, ok := c.entries[environment]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (c *cache) put(environment string, result *Result) {
	c.mu.Lock()
	c.entries[environment] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *cache) invalidate(environment string) {
	c.mu.Lock()
	delete(c.entries, environment)
	c.mu.Unlock()
}

func (c *cache) invalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Result is a resolved effective configuration.
type Result struct {
	Configuration *types.SystemConfiguration
	Source        string
	Warnings      []string
	MigratedFrom  string
}
