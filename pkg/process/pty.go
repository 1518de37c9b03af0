//go:build !windows

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTYRunner runs the wrapped command on a pseudo-terminal so its TUI keeps
// working while we listen for events beside it.
type PTYRunner struct {
	cmd         *exec.Cmd
	pty         *os.File
	mu          sync.Mutex
	stopChan    chan struct{}
	wg          sync.WaitGroup
	restoreFunc func()
}

var _ Runner = (*PTYRunner)(nil)

// NewPTYRunner creates a new PTY runner
func NewPTYRunner() *PTYRunner {
	return &PTYRunner{
		stopChan: make(chan struct{}),
	}
}

func newRunner() Runner {
	return NewPTYRunner()
}

// Start starts a process with PTY
func (p *PTYRunner) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Not every environment has a terminal to copy from
	_ = p.copyTerminalSize()

	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// Wait waits for the process to complete
func (p *PTYRunner) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := p.cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state
func (p *PTYRunner) ProcessState() *os.ProcessState {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYRunner) Process() *os.Process {
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop restores terminal state
func (p *PTYRunner) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// copyTerminalSize copies the terminal size from stdin to the PTY
func (p *PTYRunner) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

// monitorTerminalSize monitors for terminal size changes
func (p *PTYRunner) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				_ = p.copyTerminalSize()
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// Attach puts stdin into raw mode when it is a terminal and copies between
// the user's streams and the PTY until the PTY closes.
func (p *PTYRunner) Attach(stdin io.Reader, stdout io.Writer) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return fmt.Errorf("PTY not initialized")
	}
	ptyFile := p.pty
	p.mu.Unlock()

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if state, err := term.MakeRaw(int(file.Fd())); err == nil {
			fd := int(file.Fd())
			p.mu.Lock()
			p.restoreFunc = func() { _ = term.Restore(fd, state) }
			p.mu.Unlock()
			defer func() { _ = p.Stop() }()
		}
	}

	// stdin never reaches EOF on a terminal; only the output side is awaited
	go func() {
		_, _ = io.Copy(ptyFile, stdin)
	}()

	if _, err := io.Copy(stdout, ptyFile); err != nil && !isPTYClosed(err) {
		return fmt.Errorf("stdout copy error: %w", err)
	}
	return nil
}

// isPTYClosed reports the errors a PTY read returns once the child exits.
func isPTYClosed(err error) bool {
	// Linux reports EIO when the slave side closes
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}
