package main

import (
	"fmt"
	"io"

	"github.com/Veraticus/opencode-idle-toast/pkg/config"
	flag "github.com/spf13/pflag"
)

// options holds the parsed command line.
type options struct {
	configPath string
	server     string
	source     string
	backend    string
	quiet      bool
	dryRun     bool
	test       bool
	debug      bool
	help       bool

	// command is everything after "--"; non-empty selects wrap mode
	command []string

	flags *flag.FlagSet
}

func newFlagSet(opts *options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("opencode-idle-toast", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.server, "server", "", "opencode server URL")
	fs.StringVar(&opts.source, "source", "", "Event source: sse or stdin")
	fs.StringVar(&opts.backend, "backend", "", "Notification backend: powershell, toast, beeep or stdout")
	fs.BoolVar(&opts.quiet, "quiet", false, "Disable all notifications")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print notifications to stdout instead of showing them")
	fs.BoolVar(&opts.test, "test", false, "Send one notification and exit")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.help, "help", false, "Show help message")

	return fs
}

// parseArgs parses our flags and splits off the wrapped command.
func parseArgs(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	fs := newFlagSet(opts, output)
	opts.flags = fs

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	dash := fs.ArgsLenAtDash()
	switch {
	case dash >= 0:
		if dash > 0 {
			return nil, fmt.Errorf("unexpected arguments before --: %v", rest[:dash])
		}
		opts.command = rest[dash:]
	case len(rest) > 0:
		return nil, fmt.Errorf("unexpected arguments %v (put the command to wrap after --)", rest)
	}

	return opts, nil
}

// apply copies explicitly set flags over cfg.
func (o *options) apply(cfg *config.Config) {
	if o.flags.Changed("server") {
		cfg.Server = o.server
	}
	if o.flags.Changed("source") {
		cfg.Source = o.source
	}
	if o.flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if o.quiet {
		cfg.Quiet = true
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.dryRun {
		cfg.Backend = config.BackendStdout
	}
}

func (o *options) wrapping() bool {
	return len(o.command) > 0
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "opencode-idle-toast - desktop notification when opencode goes idle")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: opencode-idle-toast [OPTIONS] [-- OPENCODE_COMMAND [ARGS...]]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command, listens to a running opencode server (or stdin).")
	fmt.Fprintln(w, "With a command after --, runs it and listens to its event stream.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_SERVER      opencode server URL (default: http://127.0.0.1:4096)")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_DIRECTORY   Project directory to scope events to")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_SOURCE      Event source: sse or stdin")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_BACKEND     Notification backend")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_POWERSHELL  PowerShell executable (default: powershell.exe)")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_TITLE       Notification title (default: opencode)")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_BODY        Notification body")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_QUIET       Disable notifications (true/false)")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_DEBUG       Enable debug logging (true/false)")
	fmt.Fprintln(w, "  OPENCODE_IDLE_TOAST_CONFIG      Path to config file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/opencode-idle-toast/config.yaml")
}
