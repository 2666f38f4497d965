package retrieval

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claimsight/claimsight/internal/cache"
)

// CachedGateway wraps a Gateway with read-through caching of passage results.
type CachedGateway struct {
	inner     Gateway
	store     cache.Cache
	namespace string
	ttl       time.Duration
}

// NewCachedGateway creates a caching decorator around the given gateway.
// The namespace keeps keys from different collections apart.
func NewCachedGateway(inner Gateway, store cache.Cache, namespace string, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		inner:     inner,
		store:     store,
		namespace: namespace,
		ttl:       ttl,
	}
}

// SemanticSearch returns cached passages for the query when present.
func (g *CachedGateway) SemanticSearch(ctx context.Context, query string) ([]Passage, error) {
	key := cache.Key("search", g.namespace, query)
	if passages, ok := g.lookup(key); ok {
		return passages, nil
	}

	passages, err := g.inner.SemanticSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	g.remember(key, passages)
	return passages, nil
}

// LookupMetadata returns cached passages for the filter when present.
func (g *CachedGateway) LookupMetadata(ctx context.Context, field, value string) ([]Passage, error) {
	key := cache.Key("lookup", g.namespace, field, value)
	if passages, ok := g.lookup(key); ok {
		return passages, nil
	}

	passages, err := g.inner.LookupMetadata(ctx, field, value)
	if err != nil {
		return nil, err
	}

	g.remember(key, passages)
	return passages, nil
}

// lookup decodes a cached passage list, treating decode failures as a miss.
func (g *CachedGateway) lookup(key string) ([]Passage, bool) {
	data, ok := g.store.Get(key)
	if !ok {
		return nil, false
	}

	var passages []Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		_ = g.store.Delete(key)
		return nil, false
	}
	return passages, true
}

// remember stores a passage list, best-effort.
func (g *CachedGateway) remember(key string, passages []Passage) {
	data, err := json.Marshal(passages)
	if err != nil {
		return
	}
	_ = g.store.Set(key, data, g.ttl)
}
