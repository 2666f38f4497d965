package cache

import "time"

// LayeredCache implements a multi-layer cache (memory + disk)
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache. An empty disk directory
// yields a memory-only cache.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	c := &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
	}
	if diskDir != "" {
		c.disk = NewDiskCache(diskDir, diskTTL)
	}
	return c
}

// Get retrieves a value from the cache (checks memory first, then disk)
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if c.disk == nil {
		return nil, false
	}

	if val, found := c.disk.Get(key); found {
		// Promote to memory cache
		c.memory.Set(key, val, 0) // Use default TTL
		return val, true
	}

	return nil, false
}

// Set stores a value in both caches
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}

	if c.disk == nil {
		return nil
	}

	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both caches
func (c *LayeredCache) Delete(key string) error {
	c.memory.Delete(key)
	if c.disk != nil {
		c.disk.Delete(key)
	}
	return nil
}

// Clear removes all values from both caches
func (c *LayeredCache) Clear() error {
	c.memory.Clear()
	if c.disk != nil {
		c.disk.Clear()
	}
	return nil
}
