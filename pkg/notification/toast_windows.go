//go:build windows

package notification

import (
	"context"
	"fmt"

	"github.com/go-toast/toast"
)

// ToastNotifier shows notifications through the Windows toast API.
type ToastNotifier struct {
	appID string
}

// NewToastNotifier creates a toast notifier that posts under appID.
func NewToastNotifier(appID string) *ToastNotifier {
	return &ToastNotifier{appID: appID}
}

// Send pushes the toast.
func (t *ToastNotifier) Send(_ context.Context, notification Notification) error {
	title, message := t.text(notification)
	n := toast.Notification{
		AppID:   t.appID,
		Title:   title,
		Message: message,
	}
	if err := n.Push(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
