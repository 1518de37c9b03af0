// Package event decodes the opencode server's event stream.
package event

import (
	"context"
	"encoding/json"
)

// Type identifies the kind of event published on the opencode bus.
type Type string

// Event types this program knows by name. Anything else is passed through
// untouched.
const (
	ServerConnected Type = "server.connected"
	SessionIdle     Type = "session.idle"
	SessionUpdated  Type = "session.updated"
	SessionError    Type = "session.error"
	MessageCreated  Type = "message.created"
	MessageUpdated  Type = "message.updated"
	FileEdited      Type = "file.edited"
)

// Event is one record from the opencode bus. Only Type is interpreted;
// Properties is kept raw.
type Event struct {
	Type       Type            `json:"type"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// SessionID returns properties.sessionID when the event carries one.
func (e Event) SessionID() string {
	if len(e.Properties) == 0 {
		return ""
	}
	var props struct {
		SessionID string `json:"sessionID"`
	}
	if err := json.Unmarshal(e.Properties, &props); err != nil {
		return ""
	}
	return props.SessionID
}

// Handler consumes events. HandleEvent must not block for long; the stream
// reader calls it inline.
type Handler interface {
	HandleEvent(ctx context.Context, e Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, e Event)

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, e Event) {
	f(ctx, e)
}

// Source delivers events to a handler until ctx is done or the source is
// exhausted.
type Source interface {
	Subscribe(ctx context.Context, handler Handler) error
}
