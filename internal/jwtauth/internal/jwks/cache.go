// Package jwks fetches and caches JSON Web Key Sets for Cognito-style
// identity providers, where the JWKS URI is built directly from a region and
// a user pool id rather than discovered from authorization server metadata.
package jwks

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry represents a cached public key with expiration.
type cacheEntry struct {
	kid       string
	key       any
	expiresAt time.Time
	elem      *list.Element
}

// Cache is an in-memory, size-bounded, TTL-expiring cache for JWKS public
// keys. It is safe for concurrent use. Unlike an unbounded TTL cache, Cache
// enforces a hard entry-count bound: once full, inserting a new key evicts
// the least-recently-used entry regardless of its remaining TTL. This keeps
// memory bounded even against a caller that rotates through many distinct
// key ids within one TTL window.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxSize  int
	entries  map[string]*cacheEntry
	lru      *list.List // front = most recently used
}

// NewCache creates a cache holding at most maxSize entries, each valid for
// ttl after insertion. maxSize <= 0 is treated as 1.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
		lru:     list.New(),
	}
}

// Get retrieves a key by key id. Returns nil, false if absent or expired.
// A hit promotes the entry to most-recently-used.
func (c *Cache) Get(kid string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[kid]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(entry)
		return nil, false
	}
	c.lru.MoveToFront(entry.elem)
	return entry.key, true
}

// Set stores key under kid, evicting the least-recently-used entry first if
// the cache is at capacity and kid is not already present.
func (c *Cache) Set(kid string, key any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[kid]; ok {
		existing.key = key
		existing.expiresAt = time.Now().Add(c.ttl)
		c.lru.MoveToFront(existing.elem)
		return
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(c.entries[oldest.Value.(string)])
	}

	entry := &cacheEntry{
		kid:       kid,
		key:       key,
		expiresAt: time.Now().Add(c.ttl),
	}
	entry.elem = c.lru.PushFront(kid)
	c.entries[kid] = entry
}

// removeLocked deletes entry from both the map and the LRU list. Caller must
// hold c.mu.
func (c *Cache) removeLocked(entry *cacheEntry) {
	if entry == nil {
		return
	}
	c.lru.Remove(entry.elem)
	delete(c.entries, entry.kid)
}

// Size returns the number of live (non-expired-on-last-access) entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
