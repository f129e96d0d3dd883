package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache is an LRU cache whose entries carry an expiry. It fronts the
// post listing queries; callers construct and pass it explicitly rather
// than reaching for a package-level singleton.
type TTLCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

func NewTTLCache(size int) (*TTLCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lruCache: l}, nil
}

func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns nil when the key is absent or expired.
func (c *TTLCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.data
}

func (c *TTLCache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge drops every entry. Post mutations call this to invalidate listings.
func (c *TTLCache) Purge() {
	c.lruCache.Purge()
}
