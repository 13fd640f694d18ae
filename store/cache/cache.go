// Package cache provides a small in-memory TTL cache used to keep hot
// per-user reads off the database on busy chats.
package cache

import (
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	MaxItems        int
	OnEviction      func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL cache safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config
	done   chan struct{}
	once   sync.Once
}

// New creates a cache and starts its background cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		done:   make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get returns the cached value and whether it was present and fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Set stores a value under the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		// Drop the entry closest to expiry to make room.
		var oldestKey string
		var oldest time.Time
		for k, it := range c.items {
			if oldestKey == "" || it.expiresAt.Before(oldest) {
				oldestKey, oldest = k, it.expiresAt
			}
		}
		if oldestKey != "" {
			c.evict(oldestKey)
		}
	}

	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict(key)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Cache) evict(key string) {
	it, ok := c.items[key]
	if !ok {
		return
	}
	delete(c.items, key)
	if c.config.OnEviction != nil {
		c.config.OnEviction(key, it.value)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, it := range c.items {
				if now.After(it.expiresAt) {
					c.evict(k)
				}
			}
			c.mu.Unlock()
		}
	}
}
