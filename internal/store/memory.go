package store

import (
	"context"
	"sync"
	"time"
)

// Defaults for a MemoryContentCache built without options.
const (
	DefaultMemoryMaxEntries = 10000
	DefaultMemoryTTL        = 24 * time.Hour
)

// MemoryContentCache is a process-local ContentCache used when no database
// is configured. Entries expire after a TTL, and once MaxEntries is reached
// each Put evicts the oldest entry.
type MemoryContentCache struct {
	mu         sync.RWMutex
	entries    map[ContentKey]ContentEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

var _ ContentCache = (*MemoryContentCache)(nil)

// MemoryOption configures a MemoryContentCache.
type MemoryOption func(*MemoryContentCache)

// WithMaxEntries bounds the number of cached bodies. Non-positive values
// keep the default.
func WithMaxEntries(n int) MemoryOption {
	return func(c *MemoryContentCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithTTL sets how long a body stays cached. Non-positive values keep the
// default.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryContentCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryContentCache) { c.now = now }
}

// NewMemoryContentCache creates an empty in-memory cache.
func NewMemoryContentCache(opts ...MemoryOption) *MemoryContentCache {
	c := &MemoryContentCache{
		entries:    make(map[ContentKey]ContentEntry),
		maxEntries: DefaultMemoryMaxEntries,
		ttl:        DefaultMemoryTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements ContentCache.
func (c *MemoryContentCache) Get(ctx context.Context, key ContentKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.expired(entry, c.now()) {
		return "", ErrContentNotFound
	}
	return entry.Body, nil
}

// Put implements ContentCache.
func (c *MemoryContentCache) Put(ctx context.Context, key ContentKey, body string) error {
	if err := key.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = ContentEntry{Key: key, Body: body, CreatedAt: c.now().UTC()}
	return nil
}

// DeleteDeck implements ContentCache.
func (c *MemoryContentCache) DeleteDeck(ctx context.Context, contentHash string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for key := range c.entries {
		if key.ContentHash == contentHash {
			delete(c.entries, key)
			n++
		}
	}
	return n, nil
}

// Prune drops expired entries and returns how many were removed.
func (c *MemoryContentCache) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if c.expired(entry, now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryContentCache) expired(entry ContentEntry, now time.Time) bool {
	return now.Sub(entry.CreatedAt) >= c.ttl
}

// evictOldestLocked removes the entry with the earliest CreatedAt. The
// caller must hold the write lock.
func (c *MemoryContentCache) evictOldestLocked() {
	var (
		oldestKey ContentKey
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.CreatedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.CreatedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
