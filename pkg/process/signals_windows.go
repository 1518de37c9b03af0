//go:build windows

package process

import (
	"errors"
	"os"
)

// The console delivers Ctrl+C to every attached process, the child included.
var forwardedSignals = []os.Signal{}

// terminate kills the process; Windows has no SIGTERM.
func terminate(p *os.Process) error {
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
