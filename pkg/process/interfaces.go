package process

import (
	"io"
	"os"
)

// Runner starts the wrapped command attached to the user's terminal.
type Runner interface {
	Start(command string, args []string, env []string) error
	Attach(stdin io.Reader, stdout io.Writer) error
	Wait() error
	ProcessState() *os.ProcessState
	Process() *os.Process
	// Stop restores the terminal. It does not signal the process.
	Stop() error
}
