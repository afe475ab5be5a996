package cache

import (
	"context"
	"sync"
	"time"

	"github.com/voicecart/backend/internal/domain"
)

// cacheItem represents a single cart in the cache with expiration
type cacheItem struct {
	Cart       *domain.Cart
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cart cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go cache.cleanupExpired(10 * time.Minute)

	return cache
}

// Get retrieves a copy of a user's cart from the cache
func (c *MemoryCache) Get(ctx context.Context, userName string) (*domain.Cart, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[cacheKey(userName)]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Check if expired
	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Cart.Clone(), nil
}

// Set stores a copy of the cart with TTL
func (c *MemoryCache) Set(ctx context.Context, userName string, cart *domain.Cart, ttl time.Duration) error {
	if cart == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[cacheKey(userName)] = cacheItem{
		Cart:       cart.Clone(),
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a user's cart from the cache
func (c *MemoryCache) Delete(ctx context.Context, userName string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, cacheKey(userName))
	return nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
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
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
		}
	}
}
