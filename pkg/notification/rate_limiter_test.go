package notification

import (
	"testing"
	"time"
)

func TestTokenBucketRateLimiter_Allow(t *testing.T) {
	type op struct {
		delay     time.Duration
		wantAllow bool
	}

	tests := []struct {
		name       string
		capacity   int
		refillRate time.Duration
		operations []op
	}{
		{
			name:       "allow up to capacity immediately",
			capacity:   3,
			refillRate: time.Hour,
			operations: []op{
				{delay: 0, wantAllow: true},
				{delay: 0, wantAllow: true},
				{delay: 0, wantAllow: true},
				{delay: 0, wantAllow: false}, // 4th - should be denied
			},
		},
		{
			name:       "refill allows more operations",
			capacity:   2,
			refillRate: 100 * time.Millisecond,
			operations: []op{
				{delay: 0, wantAllow: true},
				{delay: 0, wantAllow: true},
				{delay: 0, wantAllow: false},
				{delay: 150 * time.Millisecond, wantAllow: true}, // After refill
				{delay: 0, wantAllow: false},
			},
		},
		{
			name:       "partial periods accumulate",
			capacity:   1,
			refillRate: 100 * time.Millisecond,
			operations: []op{
				{delay: 0, wantAllow: true},
				{delay: 60 * time.Millisecond, wantAllow: false},
				{delay: 60 * time.Millisecond, wantAllow: true},
			},
		},
		{
			name:       "zero capacity always denies",
			capacity:   0,
			refillRate: time.Millisecond,
			operations: []op{
				{delay: 0, wantAllow: false},
				{delay: 10 * time.Millisecond, wantAllow: false},
			},
		},
		{
			name:       "negative capacity treated as zero",
			capacity:   -5,
			refillRate: time.Second,
			operations: []op{
				{delay: 0, wantAllow: false},
				{delay: time.Minute, wantAllow: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newStepClock()
			limiter := newTokenBucketRateLimiter(tt.capacity, tt.refillRate, clock.Now)

			for i, op := range tt.operations {
				clock.Advance(op.delay)

				got := limiter.Allow()
				if got != op.wantAllow {
					t.Errorf("operation[%d]: Allow() = %v, want %v", i, got, op.wantAllow)
				}
			}
		})
	}
}

func TestTokenBucketRateLimiter_Refill(t *testing.T) {
	clock := newStepClock()
	limiter := newTokenBucketRateLimiter(2, 50*time.Millisecond, clock.Now)

	limiter.Allow() // tokens = 1
	limiter.Allow() // tokens = 0

	clock.Advance(200 * time.Millisecond) // four refill periods

	if !limiter.Allow() {
		t.Error("Expected Allow() = true after refill")
	}
	if !limiter.Allow() {
		t.Error("Expected Allow() = true for second token")
	}
	if limiter.Allow() {
		t.Error("Expected Allow() = false, tokens should be capped at capacity")
	}
}

func TestTokenBucketRateLimiter_Reset(t *testing.T) {
	limiter := NewTokenBucketRateLimiter(1, time.Hour)

	if !limiter.Allow() {
		t.Fatal("Expected first Allow() = true")
	}
	if limiter.Allow() {
		t.Fatal("Expected second Allow() = false")
	}

	limiter.Reset()

	if !limiter.Allow() {
		t.Error("Expected Allow() = true after Reset")
	}
}

func TestTokenBucketRateLimiter_Concurrent(t *testing.T) {
	capacity := 100
	limiter := NewTokenBucketRateLimiter(capacity, time.Hour) // slow refill

	allowed := make(chan bool, capacity*2)
	for i := 0; i < capacity*2; i++ {
		go func() {
			allowed <- limiter.Allow()
		}()
	}

	allowedCount := 0
	for i := 0; i < capacity*2; i++ {
		if <-allowed {
			allowedCount++
		}
	}

	if allowedCount != capacity {
		t.Errorf("Concurrent Allow() count = %d, want %d", allowedCount, capacity)
	}
}
