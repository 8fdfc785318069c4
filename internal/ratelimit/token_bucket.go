package ratelimit

import (
	"sync"
	"time"
)

// nano-token fixed point: one token is 1e9 units, so a rate of X tokens/sec
// adds exactly X units per elapsed nanosecond without float rounding.
const nanosPerToken int64 = int64(time.Second)

const maxInt64 = int64(^uint64(0) >> 1)

// TokenBucket refills at an integer rate (tokens/sec) against a Clock.
// A rate or capacity of zero yields a bucket that never grants tokens;
// callers that want no limiting should not construct a bucket at all.
type TokenBucket struct {
	mu sync.Mutex

	clock Clock

	capacity int64 // tokens
	rate     int64 // tokens/sec

	available int64 // nano-tokens
	last      time.Time
}

func NewTokenBucket(clock Clock, capacity, rate int64) *TokenBucket {
	if clock == nil {
		clock = RealClock{}
	}
	if capacity < 0 {
		capacity = 0
	}
	if rate < 0 {
		rate = 0
	}

	return &TokenBucket{
		clock:     clock,
		capacity:  capacity,
		rate:      rate,
		available: tokensToNanos(capacity),
		last:      clock.Now(),
	}
}

// Allow consumes n tokens if available. n <= 0 always succeeds.
func (b *TokenBucket) Allow(n int64) bool {
	if n <= 0 {
		return true
	}

	cost := tokensToNanos(n)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()

	if b.available < cost {
		return false
	}
	b.available -= cost
	return true
}

func (b *TokenBucket) refillLocked() {
	now := b.clock.Now()
	if now.Before(b.last) {
		// Clock moved backwards; re-anchor without refilling.
		b.last = now
		return
	}

	elapsed := now.Sub(b.last).Nanoseconds()
	if elapsed <= 0 {
		return
	}
	b.last = now

	if b.rate <= 0 || b.capacity <= 0 {
		return
	}

	cap := tokensToNanos(b.capacity)
	if b.available >= cap {
		b.available = cap
		return
	}

	// rate tokens/sec equals rate nano-tokens per nanosecond. Clamp before
	// multiplying so elapsed*rate cannot overflow.
	need := cap - b.available
	if fillTime := need / b.rate; fillTime <= 0 || elapsed >= fillTime {
		b.available = cap
		return
	}

	b.available += elapsed * b.rate
	if b.available > cap {
		b.available = cap
	}
}

func tokensToNanos(tokens int64) int64 {
	if tokens <= 0 {
		return 0
	}
	if tokens > maxInt64/nanosPerToken {
		return maxInt64
	}
	return tokens * nanosPerToken
}
