package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPerKeyBurst(t *testing.T) {
	lim := NewKeyed(1, 2)

	assert.True(t, lim.Allow("a"))
	assert.True(t, lim.Allow("a"))
	assert.False(t, lim.Allow("a"), "burst exhausted")

	// A different key has its own bucket.
	assert.True(t, lim.Allow("b"))
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	lim := NewKeyed(1, 1)
	lim.Allow("old")
	lim.Allow("fresh")

	// Backdate one bucket instead of sleeping.
	lim.mu.Lock()
	lim.buckets["old"].lastSeen = time.Now().Add(-time.Hour)
	lim.mu.Unlock()

	removed := lim.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, lim.Len())
	assert.False(t, lim.Allow("fresh"), "surviving bucket keeps its state")
}
