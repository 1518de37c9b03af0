package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/kit/log/level"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "info by default", debug: false, wantDebug: false},
		{name: "debug enabled", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, tt.debug)

			_ = level.Debug(logger).Log("msg", "hidden-or-not")
			_ = level.Info(logger).Log("msg", "always")

			out := buf.String()
			if !strings.Contains(out, "msg=always") {
				t.Errorf("expected info record, got %q", out)
			}
			if got := strings.Contains(out, "hidden-or-not"); got != tt.wantDebug {
				t.Errorf("debug record present = %v, want %v (output %q)", got, tt.wantDebug, out)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, false), "idle")

	_ = level.Info(logger).Log("msg", "hello")

	if !strings.Contains(buf.String(), "component=idle") {
		t.Errorf("expected component key, got %q", buf.String())
	}

	// A nil logger degrades to a no-op instead of panicking
	if err := Component(nil, "x").Log("msg", "dropped"); err != nil {
		t.Errorf("nop logger returned error: %v", err)
	}
}

func TestNew_CallerIsCallSite(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	_ = level.Info(logger).Log("msg", "direct")
	_ = level.Debug(Component(logger, "idle")).Log("msg", "through component")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "caller=logging_test.go:") {
			t.Errorf("expected caller to point at this file, got %q", line)
		}
	}
}
