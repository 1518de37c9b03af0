//go:build !windows

package notification

import "context"

// ToastNotifier is only functional on Windows.
type ToastNotifier struct {
	appID string
}

// NewToastNotifier creates a toast notifier that always reports
// ErrUnsupported on this platform.
func NewToastNotifier(appID string) *ToastNotifier {
	return &ToastNotifier{appID: appID}
}

// Send returns ErrUnsupported.
func (t *ToastNotifier) Send(_ context.Context, _ Notification) error {
	return ErrUnsupported
}
