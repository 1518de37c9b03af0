package event

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) HandleEvent(_ context.Context, e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) types() []Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Type, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func TestReadSSE(t *testing.T) {
	tests := []struct {
		name       string
		stream     string
		wantTypes  []Type
		wantErrors int
	}{
		{
			name: "opencode stream",
			stream: "data: {\"type\":\"server.connected\",\"properties\":{}}\n\n" +
				"data: {\"type\":\"session.idle\",\"properties\":{\"sessionID\":\"ses_1\"}}\n\n",
			wantTypes: []Type{ServerConnected, SessionIdle},
		},
		{
			name:      "crlf line endings",
			stream:    "data: {\"type\":\"session.idle\"}\r\n\r\n",
			wantTypes: []Type{SessionIdle},
		},
		{
			name:      "comments and other fields ignored",
			stream:    ": keepalive\nevent: message\nid: 7\nretry: 1000\ndata: {\"type\":\"session.idle\"}\n\n",
			wantTypes: []Type{SessionIdle},
		},
		{
			name:      "multi-line data joined",
			stream:    "data: {\"type\":\ndata: \"message.updated\"}\n\n",
			wantTypes: []Type{MessageUpdated},
		},
		{
			name:      "no space after colon",
			stream:    "data:{\"type\":\"session.idle\"}\n\n",
			wantTypes: []Type{SessionIdle},
		},
		{
			name:      "last event without trailing blank line",
			stream:    "data: {\"type\":\"session.idle\"}\n",
			wantTypes: []Type{SessionIdle},
		},
		{
			name:       "bad json skipped",
			stream:     "data: not-json\n\ndata: {\"type\":\"session.idle\"}\n\n",
			wantTypes:  []Type{SessionIdle},
			wantErrors: 1,
		},
		{
			name:       "missing type skipped",
			stream:     "data: {\"properties\":{}}\n\n",
			wantTypes:  []Type{},
			wantErrors: 1,
		},
		{
			name:      "blank lines between events are harmless",
			stream:    "\n\n\ndata: {\"type\":\"file.edited\"}\n\n\n",
			wantTypes: []Type{FileEdited},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &collector{}
			var decodeErrs []error

			err := ReadSSE(context.Background(), strings.NewReader(tt.stream), c, ReadOptions{
				OnError: func(err error) { decodeErrs = append(decodeErrs, err) },
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTypes, c.types())
			assert.Len(t, decodeErrs, tt.wantErrors)
			for _, e := range decodeErrs {
				var de *DecodeError
				assert.True(t, errors.As(e, &de))
			}
		})
	}
}

func TestReadSSE_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &collector{}
	err := ReadSSE(ctx, strings.NewReader("data: {\"type\":\"session.idle\"}\n\n"), c, ReadOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.types())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestReadSSE_ReadError(t *testing.T) {
	err := ReadSSE(context.Background(), failingReader{}, &collector{}, ReadOptions{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadLines(t *testing.T) {
	input := "{\"type\":\"message.created\"}\n\n   \n{\"type\":\"session.idle\",\"properties\":{\"sessionID\":\"ses_2\"}}\nnope\n"

	c := &collector{}
	var decodeErrs int
	err := ReadLines(context.Background(), strings.NewReader(input), c, ReadOptions{
		OnError: func(error) { decodeErrs++ },
	})
	require.NoError(t, err)
	assert.Equal(t, []Type{MessageCreated, SessionIdle}, c.types())
	assert.Equal(t, 1, decodeErrs)
	assert.Equal(t, "ses_2", c.events[1].SessionID())
}

func TestLineSource_Subscribe(t *testing.T) {
	src := NewLineSource(strings.NewReader("{\"type\":\"session.idle\"}\n"), ReadOptions{})

	c := &collector{}
	require.NoError(t, src.Subscribe(context.Background(), c))
	assert.Equal(t, []Type{SessionIdle}, c.types())
}

func TestEvent_SessionID(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{name: "present", event: Event{Type: SessionIdle, Properties: []byte(`{"sessionID":"ses_x"}`)}, want: "ses_x"},
		{name: "no properties", event: Event{Type: SessionIdle}, want: ""},
		{name: "not an object", event: Event{Type: SessionIdle, Properties: []byte(`[1,2]`)}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.SessionID())
		})
	}
}

func TestHandlerFunc(t *testing.T) {
	var got Event
	h := HandlerFunc(func(_ context.Context, e Event) { got = e })
	h.HandleEvent(context.Background(), Event{Type: SessionIdle})
	assert.Equal(t, SessionIdle, got.Type)
}
