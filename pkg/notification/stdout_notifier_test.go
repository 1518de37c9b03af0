package notification

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestStdoutNotifier_Send(t *testing.T) {
	tests := []struct {
		name         string
		notification Notification
		want         string
	}{
		{
			name: "basic notification",
			notification: Notification{
				Title:   "opencode",
				Message: "Готово",
				Time:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
				Source:  "session.idle",
			},
			want: "[NOTIFICATION] opencode: Готово (Source: session.idle)\n",
		},
		{
			name:         "notification with empty fields",
			notification: Notification{},
			want:         "[NOTIFICATION] :  (Source: )\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n := NewStdoutNotifier(&buf)

			if err := n.Send(context.Background(), tt.notification); err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStdoutNotifier_NilWriter(t *testing.T) {
	if n := NewStdoutNotifier(nil); n.out == nil {
		t.Error("expected stdout fallback writer")
	}
}
