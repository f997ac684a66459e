package metrics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

// Key identifies one cached metrics value.
type Key struct {
	OrganizationID uuid.UUID
	BatchID        uuid.UUID
}

type entry struct {
	value     *models.BatchMetrics
	expiresAt time.Time
}

// Cache is an explicit metrics cache with a subscription/invalidation API.
// Consumers register interest in a key and are notified when a writer
// (attendance mark, phase change) invalidates it. Mutation handlers are the
// sole writers of invalidation.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]entry
	subs    map[Key]map[int]func(Key)
	nextSub int
	clock   func() time.Time
}

// NewCache creates a metrics cache with the given entry TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[Key]entry),
		subs:    make(map[Key]map[int]func(Key)),
		clock:   time.Now,
	}
}

// Get returns the cached value for key, or nil if absent or expired.
func (c *Cache) Get(key Key) *models.BatchMetrics {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.clock().After(e.expiresAt) {
		return nil
	}
	return e.value
}

// Put stores a value for key.
func (c *Cache) Put(key Key, value *models.BatchMetrics) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.clock().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops the entry for key and notifies subscribers.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	var fns []func(Key)
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}

// InvalidateBatch drops every entry for the batch regardless of organization.
func (c *Cache) InvalidateBatch(batchID uuid.UUID) {
	c.mu.Lock()
	var keys []Key
	for k := range c.entries {
		if k.BatchID == batchID {
			keys = append(keys, k)
		}
	}
	for k := range c.subs {
		if k.BatchID == batchID {
			keys = append(keys, k)
		}
	}
	c.mu.Unlock()
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		c.Invalidate(k)
	}
}

// Subscribe registers fn to run whenever key is invalidated. The returned
// cancel detaches the subscription.
func (c *Cache) Subscribe(key Key, fn func(Key)) (cancel func()) {
	c.mu.Lock()
	if c.subs[key] == nil {
		c.subs[key] = make(map[int]func(Key))
	}
	id := c.nextSub
	c.nextSub++
	c.subs[key][id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		if m, ok := c.subs[key]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(c.subs, key)
			}
		}
		c.mu.Unlock()
	}
}

// Len returns the number of live entries (expired entries included until
// their next Get).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
