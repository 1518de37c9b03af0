package notification

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
)

// BeeepNotifier shows notifications through gen2brain/beeep, which works on
// Linux, macOS and Windows.
type BeeepNotifier struct{}

// NewBeeepNotifier creates a beeep notifier. The application name is the
// package-wide beeep.AppName.
func NewBeeepNotifier() *BeeepNotifier {
	return &BeeepNotifier{}
}

// Send shows the notification.
func (b *BeeepNotifier) Send(_ context.Context, notification Notification) error {
	if err := beeep.Notify(notification.Title, notification.Message, ""); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
