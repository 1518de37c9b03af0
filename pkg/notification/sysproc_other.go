//go:build !windows

package notification

import "os/exec"

// hideWindow is a no-op: outside Windows (e.g. WSL interop) the
// -WindowStyle Hidden argument is all there is.
func hideWindow(_ *exec.Cmd) {}
