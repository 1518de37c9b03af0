package notification

import (
	"context"
	"fmt"
	"io"
	"os"
)

// StdoutNotifier prints notifications instead of showing them. Used for dry
// runs.
type StdoutNotifier struct {
	out io.Writer
}

// NewStdoutNotifier creates a notifier writing to w, or to stdout when w is nil
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutNotifier{out: w}
}

// Send prints the notification
func (n *StdoutNotifier) Send(_ context.Context, notification Notification) error {
	_, err := fmt.Fprintf(n.out, "[NOTIFICATION] %s: %s (Source: %s)\n",
		notification.Title,
		notification.Message,
		notification.Source)
	return err
}
