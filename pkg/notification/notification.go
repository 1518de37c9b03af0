// Package notification provides notification functionality.
package notification

import (
	"context"
	"errors"
	"time"
)

// DebounceWindow is how long an accepted idle notification suppresses the
// next one.
const DebounceWindow = 2 * time.Second

var (
	// ErrDeliveryFailed wraps every failure to show a notification: missing
	// executable, missing BurntToast module, spawn failure or non-zero exit.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrUnsupported is returned by backends that cannot run on this platform.
	ErrUnsupported = errors.New("notification backend not supported on this platform")
)

// Notification represents a notification to be sent.
type Notification struct {
	Title   string
	Message string
	Time    time.Time
	Source  string
}

// Notifier sends notifications.
type Notifier interface {
	Send(ctx context.Context, notification Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, notification Notification) error

// Send calls f.
func (f NotifierFunc) Send(ctx context.Context, notification Notification) error {
	return f(ctx, notification)
}
