package ratelimit

// MessageLimiter caps how many signaling messages a single connection may
// relay per second. A zero or negative rate disables limiting entirely.
type MessageLimiter struct {
	bucket *TokenBucket
}

// NewMessageLimiter allows bursts up to one second's worth of messages.
func NewMessageLimiter(clock Clock, messagesPerSecond int) *MessageLimiter {
	if messagesPerSecond <= 0 {
		return &MessageLimiter{}
	}
	rate := int64(messagesPerSecond)
	return &MessageLimiter{bucket: NewTokenBucket(clock, rate, rate)}
}

// AllowMessage reports whether one more message fits the budget. Callers
// drop the message when it does not; the connection stays open.
func (l *MessageLimiter) AllowMessage() bool {
	if l == nil || l.bucket == nil {
		return true
	}
	return l.bucket.Allow(1)
}
