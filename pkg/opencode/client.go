// Package opencode subscribes to an opencode server's event stream.
package opencode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/opencode-idle-toast/pkg/event"
	"github.com/Veraticus/opencode-idle-toast/pkg/logging"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// ErrUnexpectedStatus is returned when the event endpoint answers with a
// non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status from event endpoint")

// Doer is the part of *http.Client the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client streams events from GET {base}/event and reconnects when the stream
// drops.
type Client struct {
	base      *url.URL
	directory string
	doer      Doer
	logger    log.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(context.Context, time.Duration) error
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. It must not impose an overall request
// timeout, the event stream is long-lived.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.doer = doer
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Component(logger, "opencode_client")
	}
}

// WithBackoff sets the first and the largest reconnect delay.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.maxDelay = maxDelay
	}
}

// WithDirectory selects the project instance by directory.
func WithDirectory(dir string) Option {
	return func(c *Client) {
		c.directory = dir
	}
}

// WithSleep replaces the backoff sleep.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:      u,
		doer:      &http.Client{},
		logger:    log.NewNopLogger(),
		baseDelay: 500 * time.Millisecond,
		maxDelay:  10 * time.Second,
		sleep:     sleepWithContext,
		userAgent: "opencode-idle-toast/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// EventURL returns the URL of the event stream.
func (c *Client) EventURL() string {
	u := *c.base
	u.Path = u.Path + "/event"
	if c.directory != "" {
		q := u.Query()
		q.Set("directory", c.directory)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Subscribe streams events into handler until ctx is done, reconnecting with
// exponential backoff whenever the connection fails or the stream ends. It
// always returns ctx.Err().
func (c *Client) Subscribe(ctx context.Context, handler event.Handler) error {
	delay := c.baseDelay
	for {
		connected, err := c.stream(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if connected {
			delay = c.baseDelay
		}
		if err != nil {
			level.Debug(c.logger).Log("msg", "event stream failed", "url", c.EventURL(), "err", err, "retry_in", delay)
		} else {
			level.Debug(c.logger).Log("msg", "event stream closed", "url", c.EventURL(), "retry_in", delay)
		}

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}

		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
		if delay <= 0 {
			delay = c.maxDelay
		}
	}
}

// stream runs one connection. connected reports whether the server accepted
// the request, which resets the backoff.
func (c *Client) stream(ctx context.Context, handler event.Handler) (connected bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.EventURL(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.doer.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	level.Info(c.logger).Log("msg", "connected to event stream", "url", c.EventURL())

	return true, event.ReadSSE(ctx, resp.Body, handler, event.ReadOptions{
		OnError: func(err error) {
			level.Debug(c.logger).Log("msg", "skipping undecodable event", "err", err)
		},
	})
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ event.Source = (*Client)(nil)
