// Package testutil provides thread-safe mocks shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/opencode-idle-toast/pkg/notification"
)

// MockNotifier is a thread-safe mock implementation of notification.Notifier for testing
type MockNotifier struct {
	mu            sync.Mutex
	notifications []notification.Notification
	attempts      []notification.Notification // Track all send attempts
	sendErr       error
	sendDelay     time.Duration
	panicValue    any
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		notifications: []notification.Notification{},
		attempts:      []notification.Notification{},
	}
}

// Send implements the Notifier interface
func (m *MockNotifier) Send(_ context.Context, n notification.Notification) error {
	m.mu.Lock()
	delay := m.sendDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Always track the attempt
	m.attempts = append(m.attempts, n)

	if m.panicValue != nil {
		panic(m.panicValue)
	}

	if m.sendErr != nil {
		return m.sendErr
	}

	m.notifications = append(m.notifications, n)
	return nil
}

// GetNotifications returns a copy of successfully sent notifications
func (m *MockNotifier) GetNotifications() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// GetAttempts returns a copy of all attempted sends (including failures)
func (m *MockNotifier) GetAttempts() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.attempts))
	copy(result, m.attempts)
	return result
}

// SetError sets the error to return on Send calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDelay sets a delay before each Send call
func (m *MockNotifier) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDelay = delay
}

// SetPanic makes every Send call panic with v
func (m *MockNotifier) SetPanic(v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicValue = v
}

// FakeClock is a manually advanced clock for debounce tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock stopped at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by d, which may be negative
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// MockRateLimiter is a mock implementation of interfaces.RateLimiter for testing
type MockRateLimiter struct {
	mu          sync.Mutex
	allowResult bool
	allowCount  int
}

// NewMockRateLimiter creates a new mock rate limiter
func NewMockRateLimiter(allowResult bool) *MockRateLimiter {
	return &MockRateLimiter{
		allowResult: allowResult,
	}
}

// Allow implements the RateLimiter interface
func (m *MockRateLimiter) Allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowCount++
	return m.allowResult
}

// Reset implements the RateLimiter interface. The mock has no state to
// reset.
func (m *MockRateLimiter) Reset() {}

// GetAllowCount returns how many times Allow was called
func (m *MockRateLimiter) GetAllowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowCount
}
