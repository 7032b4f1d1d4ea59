package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/furnilens/backend/internal/domain"
)

const (
	shardCount      = 32
	cleanupInterval = 10 * time.Minute
)

// cacheItem represents a single item in the cache with expiration.
// A zero expiration never expires.
type cacheItem struct {
	value      []byte
	expiration time.Time
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

type shard struct {
	mu   sync.RWMutex
	data map[string]cacheItem
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Keys are spread over shards so unrelated sessions do not contend on one lock.
type MemoryCache struct {
	shards [shardCount]*shard
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{stop: make(chan struct{})}
	for i := range cache.shards {
		cache.shards[i] = &shard{data: make(map[string]cacheItem)}
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

func (c *MemoryCache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Get retrieves a copy of the value stored under key
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.data[key]
	if !exists || item.expired(time.Now()) {
		return nil, domain.ErrCacheMiss
	}

	return append([]byte(nil), item.value...), nil
}

// Set stores a copy of value with TTL. A non-positive TTL keeps the entry until deleted.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	item := cacheItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiration = time.Now().Add(ttl)
	}

	s := c.shardFor(key)
	s.mu.Lock()
	s.data[key] = item
	s.mu.Unlock()

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.data[key]
	if !exists || item.expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

// cleanupExpired removes expired entries periodically until Close is called
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *MemoryCache) removeExpired(now time.Time) {
	for _, s := range c.shards {
		s.mu.Lock()
		for key, item := range s.data {
			if item.expired(now) {
				delete(s.data, key)
			}
		}
		s.mu.Unlock()
	}
}

// Size returns the current number of items in the cache, expired ones included
func (c *MemoryCache) Size() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.data)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.data = make(map[string]cacheItem)
		s.mu.Unlock()
	}
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}
