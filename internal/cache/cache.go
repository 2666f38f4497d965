package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from the given parts
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "claimsight:v1:" + hex.EncodeToString(hash[:])
}

// Nop is a cache that stores nothing, used when caching is disabled
type Nop struct{}

// Get always misses
func (Nop) Get(string) ([]byte, bool) { return nil, false }

// Set discards the value
func (Nop) Set(string, []byte, time.Duration) error { return nil }

// Delete does nothing
func (Nop) Delete(string) error { return nil }

// Clear does nothing
func (Nop) Clear() error { return nil }
