package notification

import (
	"context"
	"time"

	"github.com/Veraticus/opencode-idle-toast/pkg/config"
	"github.com/Veraticus/opencode-idle-toast/pkg/interfaces"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Manager sits in front of a backend: it honours quiet mode and the optional
// hard cap, then forwards to the backend.
type Manager struct {
	quiet       bool
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	logger      log.Logger
}

// NewManager creates a new notification manager. rateLimiter may be nil.
func NewManager(cfg *config.Config, notifier Notifier, rateLimiter interfaces.RateLimiter, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Manager{
		quiet:       cfg.Quiet,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// NewRateLimiter builds the hard cap described by cfg, or nil when the cap is
// disabled.
func NewRateLimiter(cfg *config.Config) interfaces.RateLimiter {
	if cfg.RateLimit.MaxMessages <= 0 {
		return nil
	}
	return NewTokenBucketRateLimiter(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window/time.Duration(cfg.RateLimit.MaxMessages))
}

// Send forwards the notification to the backend unless it is suppressed.
// Suppressed notifications are not errors.
func (m *Manager) Send(ctx context.Context, notification Notification) error {
	if m.quiet {
		level.Debug(m.logger).Log("msg", "quiet mode, notification dropped", "title", notification.Title)
		return nil
	}

	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		level.Debug(m.logger).Log("msg", "rate limit reached, notification dropped", "title", notification.Title)
		return nil
	}

	return m.notifier.Send(ctx, notification)
}
