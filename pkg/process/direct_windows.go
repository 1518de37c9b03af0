//go:build windows

package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// ConsoleRunner runs the wrapped command on the current console. Windows
// has no PTY here, so the child inherits our standard handles directly.
type ConsoleRunner struct {
	cmd *exec.Cmd
	mu  sync.Mutex
}

var _ Runner = (*ConsoleRunner)(nil)

func newRunner() Runner {
	return &ConsoleRunner{}
}

// Start starts the process with inherited standard handles
func (c *ConsoleRunner) Start(command string, args []string, env []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		return fmt.Errorf("process already started")
	}

	c.cmd = exec.Command(command, args...)
	c.cmd.Env = env
	c.cmd.Stdin = os.Stdin
	c.cmd.Stdout = os.Stdout
	c.cmd.Stderr = os.Stderr

	return c.cmd.Start()
}

// Attach is a no-op: the child already owns the console.
func (c *ConsoleRunner) Attach(io.Reader, io.Writer) error {
	return nil
}

// Wait waits for the process to complete
func (c *ConsoleRunner) Wait() error {
	if c.cmd == nil {
		return fmt.Errorf("process not started")
	}
	return c.cmd.Wait()
}

// ProcessState returns the process state
func (c *ConsoleRunner) ProcessState() *os.ProcessState {
	if c.cmd == nil {
		return nil
	}
	return c.cmd.ProcessState
}

// Process returns the underlying process
func (c *ConsoleRunner) Process() *os.Process {
	if c.cmd == nil {
		return nil
	}
	return c.cmd.Process
}

// Stop does nothing; the console mode was never changed.
func (c *ConsoleRunner) Stop() error {
	return nil
}
