// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"context"
	"os/exec"
)

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
	Reset()
}

// CommandRunner runs an external command to completion.
type CommandRunner interface {
	Run(ctx context.Context, cmd *exec.Cmd) error
}

// ProcessWrapper wraps and monitors a process.
type ProcessWrapper interface {
	Start(command string, args []string) error
	Wait() error
	ExitCode() int
	Stop() error
}
