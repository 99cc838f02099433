package rest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newLimiterWithClock(clock *fakeClock) *PerClientRateLimiter {
	l := NewPerClientRateLimiter(5)
	l.now = clock.Now
	return l
}

func TestPerClientRateLimiter_EvictsIdleClientsOncePerTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newLimiterWithClock(clock)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.True(t, l.Allow(ip))
	}
	assert.Len(t, l.clients, 3)

	// Idle clients past the ttl stay until a full ttl has passed since the last sweep.
	clock.Advance(l.ttl - time.Second)
	assert.True(t, l.Allow("10.0.0.4"))
	assert.Len(t, l.clients, 4)

	clock.Advance(2 * time.Second)
	assert.True(t, l.Allow("10.0.0.4"))
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "10.0.0.4")
	assert.Equal(t, clock.Now(), l.lastSweep)
}

func TestPerClientRateLimiter_NoSweepWithinInterval(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newLimiterWithClock(clock)

	assert.True(t, l.Allow("10.0.0.1"))
	first := l.lastSweep

	for i := 0; i < 2000; i++ {
		clock.Advance(time.Millisecond)
		l.Allow(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	assert.Equal(t, first, l.lastSweep)
	assert.Len(t, l.clients, 2001)
}
