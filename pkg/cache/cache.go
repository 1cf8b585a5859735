// Package cache holds recommendation results keyed on normalized prompts.
//
// Eviction is FIFO, not LRU: once the entry count exceeds capacity the
// entry inserted longest ago is dropped, regardless of how recently it was
// read. Expired entries are shadowed on read and only leave the cache
// through that FIFO eviction or Clear.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/coursewise/coursewise/pkg/models"
)

const (
	DefaultTTL      = time.Hour
	DefaultCapacity = 50
)

// HitResponseTimeMs is the response time reported for results served from
// the cache.
const HitResponseTimeMs int64 = 0

type entry struct {
	key      string
	result   models.RecommendationResult
	storedAt time.Time
}

// Cache is an in-memory, size-bounded, time-boxed prompt cache. It is safe
// for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	entries  map[string]*list.Element
	order    *list.List // front is oldest insertion
	hits     int64
	misses   int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long an entry is served after it was stored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCapacity sets the maximum number of entries.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeKey trims surrounding whitespace and case-folds a prompt.
func NormalizeKey(prompt string) string {
	return strings.ToLower(strings.TrimSpace(prompt))
}

// Get returns a copy of the result stored for prompt, marked as cached.
func (c *Cache) Get(prompt string) (models.RecommendationResult, bool) {
	key := NormalizeKey(prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return models.RecommendationResult{}, false
	}
	e := el.Value.(*entry)
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.misses++
		return models.RecommendationResult{}, false
	}

	c.hits++
	out := e.result.Clone()
	out.Cached = true
	ms := HitResponseTimeMs
	out.ResponseTimeMs = &ms
	return out, true
}

// Put stores result under prompt. Overwriting a key counts as a fresh
// insertion for eviction order.
func (c *Cache) Put(prompt string, result models.RecommendationResult) {
	key := NormalizeKey(prompt)
	e := &entry{key: key, result: result.Clone(), storedAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
	}
	c.entries[key] = c.order.PushBack(e)

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache performance metrics.
func (c *Cache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CacheStats{
		Entries:  c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// Clear removes every entry. If expiredOnly is true, only expired entries are removed.
func (c *Cache) Clear(expiredOnly bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if !expiredOnly || now.Sub(e.storedAt) >= c.ttl {
			c.order.Remove(el)
			delete(c.entries, e.key)
			removed++
		}
		el = next
	}
	return removed
}
