package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is an in-memory TTL cache with LRU eviction, safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	items    map[string]*entry[V]
	order    *list.List // MRU at front, LRU at back
	maxItems int        // 0 = unlimited
	now      func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type entry[V any] struct {
	key  string
	v    V
	exp  time.Time // zero = no expiry
	elem *list.Element
}

// New returns a cache holding at most maxItems entries. When janitorEvery is positive a
// background goroutine drops expired entries on that interval until Close is called.
func New[V any](maxItems int, janitorEvery time.Duration) *Cache[V] {
	if maxItems < 0 {
		maxItems = 0
	}
	c := &Cache[V]{
		items:    make(map[string]*entry[V]),
		order:    list.New(),
		maxItems: maxItems,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if janitorEvery > 0 {
		go c.janitor(janitorEvery)
	} else {
		close(c.done)
	}
	return c
}

// Get returns value and whether it exists and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.expired(e) {
		// lazy delete
		c.removeNoLock(key)
		return zero, false
	}
	c.order.MoveToFront(e.elem)
	return e.v, true
}

// Set sets a value with TTL. ttl<=0 means no expiry.
func (c *Cache[V]) Set(key string, v V, ttl time.Duration) {
	if c == nil {
		return
	}
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		e.v, e.exp = v, exp
		c.order.MoveToFront(e.elem)
		return
	}
	e := &entry[V]{key: key, v: v, exp: exp}
	e.elem = c.order.PushFront(e)
	c.items[key] = e
	for c.maxItems > 0 && c.order.Len() > c.maxItems {
		c.evictLRUNoLock()
	}
}

// Delete removes a key.
func (c *Cache[V]) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.removeNoLock(key)
	c.mu.Unlock()
}

// Len counts entries, including expired ones the janitor has not dropped yet.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the janitor and waits for it to exit. Safe to call more than once.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// janitor periodically removes expired items.
func (c *Cache[V]) janitor(interval time.Duration) {
	defer close(c.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.purgeExpired()
		}
	}
}

func (c *Cache[V]) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if c.expired(e) {
			c.removeNoLock(k)
		}
	}
}

func (c *Cache[V]) expired(e *entry[V]) bool {
	return !e.exp.IsZero() && c.now().After(e.exp)
}

// removeNoLock removes key from map/list; caller must hold c.mu.
func (c *Cache[V]) removeNoLock(key string) {
	if e, ok := c.items[key]; ok {
		c.order.Remove(e.elem)
		delete(c.items, key)
	}
}

// evictLRUNoLock removes one LRU entry; caller must hold c.mu.
func (c *Cache[V]) evictLRUNoLock() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry[V])
	c.order.Remove(back)
	delete(c.items, e.key)
}
