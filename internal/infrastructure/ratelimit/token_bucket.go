package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is an in-process token bucket. It backs the limiter while
// Redis cannot be reached.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	rate       float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// TokenBucketConfig holds configuration for creating a token bucket.
type TokenBucketConfig struct {
	Capacity float64
	Rate     float64
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(capacity, rate float64) *TokenBucket {
	return newTokenBucket(capacity, rate, time.Now)
}

func newTokenBucket(capacity, rate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		rate:       rate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// TimeUntilAvailable returns how long until n tokens are available.
func (tb *TokenBucket) TimeUntilAvailable(n float64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= n || tb.rate <= 0 {
		return 0
	}
	return time.Duration((n - tb.tokens) / tb.rate * float64(time.Second))
}

// refill must be called with the lock held.
func (tb *TokenBucket) refill() {
	now := tb.now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// TokenBucketPool keeps one bucket per key.
type TokenBucketPool struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucketEntry
	config  TokenBucketConfig
	now     func() time.Time
}

type tokenBucketEntry struct {
	bucket   *TokenBucket
	lastUsed time.Time
}

// NewTokenBucketPool creates an empty pool.
func NewTokenBucketPool(config TokenBucketConfig) *TokenBucketPool {
	return &TokenBucketPool{
		buckets: make(map[string]*tokenBucketEntry),
		config:  config,
		now:     time.Now,
	}
}

// GetOrCreate returns the bucket for key, creating a full one if needed.
func (p *TokenBucketPool) GetOrCreate(key string) *TokenBucket {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.buckets[key]; ok {
		entry.lastUsed = p.now()
		return entry.bucket
	}
	bucket := newTokenBucket(p.config.Capacity, p.config.Rate, p.now)
	p.buckets[key] = &tokenBucketEntry{bucket: bucket, lastUsed: p.now()}
	return bucket
}

// Remove drops the bucket for key.
func (p *TokenBucketPool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.buckets, key)
}

// Cleanup removes buckets unused for longer than maxIdle and returns how many went.
func (p *TokenBucketPool) Cleanup(maxIdle time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for key, entry := range p.buckets {
		if now.Sub(entry.lastUsed) > maxIdle {
			delete(p.buckets, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of buckets in the pool.
func (p *TokenBucketPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}
