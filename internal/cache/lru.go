// Package cache holds small in-process caches for derived views.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the read-through surface used by callers.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// LRUCache evicts the least recently used entry past maxSize and drops
// entries older than ttl on access. A zero ttl never expires entries.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	lru     *list.List

	hits, misses uint64
}

var _ Cache[int] = (*LRUCache[int])(nil)

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func NewLRUCache[T any](maxSize int, ttl time.Duration, opts ...Option) *LRUCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     o.now,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.expired(item) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return item.data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{key: key, data: data}
	if c.ttl > 0 {
		item.expiresAt = c.now().Add(c.ttl)
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(item)
	for c.lru.Len() > c.maxSize {
		c.removeElement(c.lru.Back())
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// Purge drops every entry.
func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

// CleanExpired removes all expired entries and returns how many were removed.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		if c.expired(elem.Value.(*cacheItem[T])) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counters.
func (c *LRUCache[T]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRUCache[T]) expired(item *cacheItem[T]) bool {
	return c.ttl > 0 && c.now().After(item.expiresAt)
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}
