package process

import (
	"fmt"
	"net/url"
	"strings"
)

// PortFromURL returns the port the server URL points at, filling in the
// scheme default when the URL has none.
func PortFromURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if p := u.Port(); p != "" {
		return p, nil
	}
	switch u.Scheme {
	case "http":
		return "80", nil
	case "https":
		return "443", nil
	default:
		return "", fmt.Errorf("cannot infer port from %q", server)
	}
}

// EnsurePort appends --port to args unless the caller already chose one, so
// the wrapped opencode serves its event stream where we listen.
func EnsurePort(args []string, port string) []string {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--port" || strings.HasPrefix(arg, "--port=") {
			return args
		}
	}

	out := make([]string, 0, len(args)+2)
	out = append(out, args...)
	return append(out, "--port", port)
}
