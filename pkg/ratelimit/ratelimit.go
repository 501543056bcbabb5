// Package ratelimit provides a keyed token-bucket limiter for throttling
// independent callers (guilds, channels, remote hosts) against a shared
// resource.
//
// Example usage:
//
//	lim := ratelimit.NewKeyed(1, 3)
//	if lim.Allow(guildID) {
//	    handleRequest()
//	}
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keyed maintains one token bucket per key. Buckets are created on first use
// and removed by Sweep once idle, so the map does not grow with the number of
// keys ever seen.
type Keyed struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewKeyed creates a limiter allowing limit events per second with the given
// burst for each distinct key.
func NewKeyed(limit rate.Limit, burst int) *Keyed {
	if burst < 1 {
		burst = 1
	}
	return &Keyed{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether an event for key may proceed now.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.lim.Allow()
}

// Sweep drops buckets that have been idle for at least maxIdle and returns
// how many were removed. An idle bucket is full again anyway, so removing it
// never loosens the limit.
func (k *Keyed) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	k.mu.Lock()
	defer k.mu.Unlock()
	removed := 0
	for key, b := range k.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(k.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
