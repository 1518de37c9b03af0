package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/Veraticus/opencode-idle-toast/pkg/interfaces"
	"github.com/Veraticus/opencode-idle-toast/pkg/logging"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// WrappedEnv is set in the child's environment to stop the wrapper from
// wrapping itself.
const WrappedEnv = "OPENCODE_IDLE_TOAST_WRAPPED"

// ErrAlreadyWrapped is returned by Start when running inside a wrapped
// process.
var ErrAlreadyWrapped = errors.New("already wrapped by opencode-idle-toast")

// Manager manages the wrapped opencode process
type Manager struct {
	runner   Runner
	stdin    io.Reader
	stdout   io.Writer
	logger   log.Logger
	exitCode int
	mu       sync.Mutex
	sigChan  chan os.Signal
	done     chan struct{}
}

var _ interfaces.ProcessWrapper = (*Manager)(nil)

// NewManager creates a process manager using the platform runner: a pty on
// unix, inherited console handles on windows.
func NewManager(logger log.Logger) *Manager {
	return newManager(newRunner(), os.Stdin, os.Stdout, logger)
}

func newManager(runner Runner, stdin io.Reader, stdout io.Writer, logger log.Logger) *Manager {
	return &Manager{
		runner: runner,
		stdin:  stdin,
		stdout: stdout,
		logger: logging.Component(logger, "process"),
		done:   make(chan struct{}),
	}
}

// Start starts the wrapped process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if os.Getenv(WrappedEnv) == "1" {
		return ErrAlreadyWrapped
	}

	env := append(os.Environ(), WrappedEnv+"=1")

	if err := m.runner.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	go func() {
		if err := m.runner.Attach(m.stdin, m.stdout); err != nil {
			level.Debug(m.logger).Log("msg", "terminal I/O ended", "err", err)
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit
func (m *Manager) Wait() error {
	if m.runner == nil {
		return fmt.Errorf("process not started")
	}

	err := m.runner.Wait()

	m.mu.Lock()
	if state := m.runner.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	m.mu.Unlock()

	// Ensure terminal is restored
	_ = m.runner.Stop()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding relays termination signals to the child
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan, forwardedSignals...)

	go m.forwardSignals(m.sigChan)
}

func (m *Manager) forwardSignals(sigChan <-chan os.Signal) {
	for {
		select {
		case sig, ok := <-sigChan:
			if !ok {
				return
			}
			if p := m.runner.Process(); p != nil {
				if err := p.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					level.Debug(m.logger).Log("msg", "signal forward failed", "signal", sig, "err", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
		m.sigChan = nil
	}
}

// Stop restores the terminal and asks the child to exit
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runner == nil {
		return nil
	}

	_ = m.runner.Stop()

	if p := m.runner.Process(); p != nil {
		return terminate(p)
	}
	return nil
}
