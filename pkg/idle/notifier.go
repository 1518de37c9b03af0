// Package idle shows a desktop notification when an opencode session goes
// idle.
//
// A Notifier accepts at most one session.idle event per
// notification.DebounceWindow. The window is claimed before delivery starts,
// so a slow or failing delivery cannot let a second event through. Delivery
// runs in the background and its failures never reach the caller.
package idle

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/opencode-idle-toast/pkg/event"
	"github.com/Veraticus/opencode-idle-toast/pkg/interfaces"
	"github.com/Veraticus/opencode-idle-toast/pkg/logging"
	"github.com/Veraticus/opencode-idle-toast/pkg/notification"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Default notification text.
const (
	DefaultTitle = "opencode"
	DefaultBody  = "Готово"
)

// Notifier reacts to session.idle events.
type Notifier struct {
	sender notification.Notifier
	gate   interfaces.RateLimiter
	now    func() time.Time
	logger log.Logger
	title  string
	body   string

	// delivery outlives the event that triggered it
	base     context.Context
	inflight sync.WaitGroup
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock sets the clock used for the debounce gate and notification
// timestamps.
func WithClock(clock func() time.Time) Option {
	return func(n *Notifier) {
		n.now = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(n *Notifier) {
		n.logger = logging.Component(logger, "idle_notifier")
	}
}

// WithText overrides the notification title and body.
func WithText(title, body string) Option {
	return func(n *Notifier) {
		n.title = title
		n.body = body
	}
}

// WithGate replaces the debounce gate.
func WithGate(gate interfaces.RateLimiter) Option {
	return func(n *Notifier) {
		n.gate = gate
	}
}

// WithContext sets the context background deliveries run under. Cancelling
// it kills in-flight notification processes.
func WithContext(ctx context.Context) Option {
	return func(n *Notifier) {
		n.base = ctx
	}
}

// New creates a Notifier delivering through sender. Unless WithGate is given
// it debounces with notification.DebounceWindow.
func New(sender notification.Notifier, opts ...Option) *Notifier {
	n := &Notifier{
		sender: sender,
		now:    time.Now,
		logger: log.NewNopLogger(),
		title:  DefaultTitle,
		body:   DefaultBody,
		base:   context.Background(),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.gate == nil {
		n.gate = notification.NewDebouncer(notification.DebounceWindow, n.now)
	}

	return n
}

// HandleEvent implements event.Handler. Events other than session.idle, and
// session.idle events inside the debounce window, are ignored. An accepted
// event starts a background delivery and returns without waiting for it.
func (n *Notifier) HandleEvent(_ context.Context, e event.Event) {
	if e.Type != event.SessionIdle {
		return
	}

	if !n.gate.Allow() {
		level.Debug(n.logger).Log("msg", "idle event debounced", "session", e.SessionID())
		return
	}

	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				level.Debug(n.logger).Log("msg", "notification backend panicked", "panic", r)
			}
		}()
		if err := n.Notify(n.base); err != nil {
			level.Debug(n.logger).Log("msg", "notification not shown", "session", e.SessionID(), "err", err)
		}
	}()
}

// Notify delivers the notification right away, bypassing the gate, and
// reports the outcome.
func (n *Notifier) Notify(ctx context.Context) error {
	return n.sender.Send(ctx, notification.Notification{
		Title:   n.title,
		Message: n.body,
		Time:    n.now(),
		Source:  string(event.SessionIdle),
	})
}

// Wait blocks until every delivery started so far has finished.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}

var _ event.Handler = (*Notifier)(nil)
