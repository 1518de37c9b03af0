//go:build !windows

package process

import (
	"errors"
	"os"
	"syscall"
)

var forwardedSignals = []os.Signal{
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
	syscall.SIGUSR1,
	syscall.SIGUSR2,
}

// terminate sends SIGTERM, falling back to SIGKILL.
func terminate(p *os.Process) error {
	if err := p.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return p.Kill()
	}
	return nil
}
