package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/opencode-idle-toast/pkg/config"
	"github.com/Veraticus/opencode-idle-toast/pkg/event"
	"github.com/Veraticus/opencode-idle-toast/pkg/idle"
	"github.com/Veraticus/opencode-idle-toast/pkg/interfaces"
	"github.com/Veraticus/opencode-idle-toast/pkg/logging"
	"github.com/Veraticus/opencode-idle-toast/pkg/notification"
	"github.com/Veraticus/opencode-idle-toast/pkg/opencode"
	"github.com/Veraticus/opencode-idle-toast/pkg/process"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Streams are the standard handles the application talks to.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config              *config.Config
	Logger              log.Logger
	Backend             notification.Notifier
	RateLimiter         interfaces.RateLimiter
	NotificationManager *notification.Manager
	IdleNotifier        *idle.Notifier
	Source              event.Source
	ProcessManager      interfaces.ProcessWrapper
}

// NewDependencies creates all dependencies with the given configuration.
// Background deliveries run under ctx.
func NewDependencies(ctx context.Context, cfg *config.Config, logger log.Logger, streams Streams) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	backend, err := notification.NewBackend(cfg, streams.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification backend: %w", err)
	}
	deps.Backend = backend
	deps.RateLimiter = notification.NewRateLimiter(cfg)
	deps.NotificationManager = notification.NewManager(cfg, deps.Backend, deps.RateLimiter, logging.Component(logger, "notification"))

	deps.IdleNotifier = idle.New(deps.NotificationManager,
		idle.WithContext(ctx),
		idle.WithLogger(logger),
		idle.WithText(cfg.Title, cfg.Body),
	)

	switch cfg.Source {
	case config.SourceStdin:
		deps.Source = event.NewLineSource(streams.Stdin, event.ReadOptions{
			OnError: decodeErrorLogger(logger),
		})
	default:
		client, err := opencode.NewClient(cfg.Server,
			opencode.WithLogger(logger),
			opencode.WithBackoff(cfg.Reconnect.BaseDelay, cfg.Reconnect.MaxDelay),
			opencode.WithDirectory(cfg.Directory),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create event client: %w", err)
		}
		deps.Source = client
	}

	return deps, nil
}

// Close waits for in-flight notifications to finish.
func (d *Dependencies) Close() {
	if d.IdleNotifier != nil {
		d.IdleNotifier.Wait()
	}
}

func decodeErrorLogger(logger log.Logger) func(error) {
	return func(err error) {
		level.Debug(logger).Log("msg", "skipping undecodable event", "err", err)
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Listen feeds events from the configured source to the idle notifier until
// ctx is cancelled or a finite source runs dry.
func (a *Application) Listen(ctx context.Context) error {
	err := a.deps.Source.Subscribe(ctx, a.deps.IdleNotifier)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Test sends a single notification, bypassing the debounce gate, and reports
// whether the backend accepted it.
func (a *Application) Test(ctx context.Context) error {
	return a.deps.IdleNotifier.Notify(ctx)
}

// Run starts the wrapped command, listens to its event stream while it runs
// and returns once it exits.
func (a *Application) Run(ctx context.Context, command string, args []string) error {
	if a.deps.ProcessManager == nil {
		return fmt.Errorf("no process manager configured")
	}

	if a.deps.Config.Source == config.SourceSSE {
		port, err := process.PortFromURL(a.deps.Config.Server)
		if err != nil {
			return err
		}
		args = process.EnsurePort(args, port)
	}

	level.Debug(a.deps.Logger).Log("msg", "starting wrapped command", "command", command, "args", fmt.Sprint(args))

	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}

	listenCtx, cancel := context.WithCancel(ctx)
	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		if err := a.Listen(listenCtx); err != nil {
			level.Debug(a.deps.Logger).Log("msg", "event source stopped", "err", err)
		}
	}()

	err := a.deps.ProcessManager.Wait()
	cancel()
	<-listenDone

	return err
}

// Stop gracefully stops the wrapped command
func (a *Application) Stop() error {
	if a.deps.ProcessManager == nil {
		return nil
	}
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process
func (a *Application) ExitCode() int {
	if a.deps.ProcessManager == nil {
		return 0
	}
	return a.deps.ProcessManager.ExitCode()
}
