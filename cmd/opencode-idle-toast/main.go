package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/Veraticus/opencode-idle-toast/pkg/config"
	"github.com/Veraticus/opencode-idle-toast/pkg/logging"
	"github.com/Veraticus/opencode-idle-toast/pkg/process"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	opts, err := parseArgs(os.Args[1:], io.Discard)
	if errors.Is(err, flag.ErrHelp) {
		printUsage(os.Stdout, newFlagSet(&options{}, io.Discard))
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run with --help for usage.")
		os.Exit(1)
	}

	if opts.help {
		printUsage(os.Stdout, opts.flags)
		os.Exit(0)
	}

	// The config path must be in place before Load reads it
	if opts.configPath != "" {
		if err := os.Setenv("OPENCODE_IDLE_TOAST_CONFIG", opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid flags: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logOutput(os.Stderr, opts.wrapping(), cfg.Debug), cfg.Debug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := NewDependencies(ctx, cfg, logger, Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}
	if opts.wrapping() {
		deps.ProcessManager = process.NewManager(logger)
	}

	app := NewApplication(deps)

	// Ensure terminal restoration on panic
	defer func() {
		if r := recover(); r != nil {
			_ = app.Stop()
			panic(r)
		}
	}()

	handleSignals(opts.wrapping(), func() {
		cancel()
		if err := app.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping process: %v\n", err)
		}
		os.Exit(130)
	})

	switch {
	case opts.test:
		err := app.Test(ctx)
		deps.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error sending notification: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)

	case opts.wrapping():
		if err := app.Run(ctx, opts.command[0], opts.command[1:]); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				fmt.Fprintf(os.Stderr, "Error running %s: %v\n", opts.command[0], err)
				if app.ExitCode() == 0 {
					os.Exit(1)
				}
			}
		}
		deps.Close()
		os.Exit(app.ExitCode())

	default:
		if err := app.Listen(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading events: %v\n", err)
			os.Exit(1)
		}
		deps.Close()
	}
}

// handleSignals calls shutdown on SIGTERM. Interrupts also shut down when
// listening; a wrapped command gets Ctrl+C itself, so we ignore it then.
func handleSignals(wrapping bool, shutdown func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if wrapping && sig == os.Interrupt {
				continue
			}
			shutdown()
			return
		}
	}()
}

// logOutput keeps log records off a terminal that a wrapped TUI is drawing
// on, unless debugging was asked for.
func logOutput(stderr *os.File, wrapping, debug bool) io.Writer {
	if wrapping && !debug && term.IsTerminal(int(stderr.Fd())) {
		return io.Discard
	}
	return stderr
}
