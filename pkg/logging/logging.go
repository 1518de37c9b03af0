// Package logging builds the go-kit logger shared by every component.
package logging

import (
	"io"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// New returns a logfmt logger writing to w. Debug records are dropped unless
// debug is set.
func New(w io.Writer, debug bool) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))

	allow := level.AllowInfo()
	if debug {
		allow = level.AllowDebug()
	}
	logger = level.NewFilter(logger, allow)

	// Bound outside the filter so level.X(logger).Log resolves the caller
	// in the same context Log is called on.
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// Component tags every record from logger with the component name.
func Component(logger log.Logger, name string) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return log.With(logger, "component", name)
}
