package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewTokenBucket(clk, 10, 10)

	if !b.Allow(10) {
		t.Fatal("expected initial burst to succeed")
	}
	if b.Allow(1) {
		t.Fatal("expected bucket to be empty")
	}

	clk.Advance(100 * time.Millisecond) // one token at 10/sec
	if !b.Allow(1) {
		t.Fatal("expected one token after 100ms")
	}
	if b.Allow(1) {
		t.Fatal("expected only one token refilled")
	}
}

func TestTokenBucket_ClampsToCapacity(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewTokenBucket(clk, 2, 2)

	if !b.Allow(2) {
		t.Fatal("expected initial tokens")
	}

	clk.Advance(time.Hour)
	if !b.Allow(2) {
		t.Fatal("expected refill to capacity")
	}
	if b.Allow(1) {
		t.Fatal("expected no tokens beyond capacity")
	}
}

func TestTokenBucket_BackwardsClock(t *testing.T) {
	clk := &fakeClock{now: time.Unix(100, 0)}
	b := NewTokenBucket(clk, 1, 1)

	if !b.Allow(1) {
		t.Fatal("expected initial token")
	}

	clk.Advance(-time.Minute)
	if b.Allow(1) {
		t.Fatal("expected no refill when the clock moves backwards")
	}
}

func TestMessageLimiter_Disabled(t *testing.T) {
	l := NewMessageLimiter(&fakeClock{now: time.Unix(0, 0)}, 0)
	for i := 0; i < 1000; i++ {
		if !l.AllowMessage() {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestMessageLimiter_DropsAboveRate(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := NewMessageLimiter(clk, 5)

	for i := 0; i < 5; i++ {
		if !l.AllowMessage() {
			t.Fatalf("message %d within burst should be allowed", i)
		}
	}
	if l.AllowMessage() {
		t.Fatal("expected message above the per-second budget to be dropped")
	}

	clk.Advance(time.Second)
	if !l.AllowMessage() {
		t.Fatal("expected budget to recover after a second")
	}
}
