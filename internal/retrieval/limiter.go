package retrieval

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-host rate limiting for outbound retrieval calls
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given URL
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	limiter := l.getLimiter(host)
	return limiter.Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(rawURL string) bool {
	host, err := extractHost(rawURL)
	if err != nil {
		return false
	}

	limiter := l.getLimiter(host)
	return limiter.Allow()
}

// getLimiter returns the rate limiter for a host
func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter

	return limiter
}

// extractHost extracts the host from a URL
func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
