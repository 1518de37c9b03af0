//go:build !windows

package process

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func skipWithoutPTY(t *testing.T) {
	t.Helper()
	if os.Getenv("CI") == "true" {
		t.Skip("Skipping PTY test in CI environment")
	}
}

func TestPTYRunner_StartAndWait(t *testing.T) {
	skipWithoutPTY(t)

	runner := NewPTYRunner()
	if err := runner.Start("sh", []string{"-c", "echo hello; exit 3"}, os.Environ()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runner.Attach(strings.NewReader(""), &out)
	}()

	// The PTY reports EIO once the child exits, ending Attach before Wait
	// closes the master side.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Attach did not return after the process exited")
	}

	_ = runner.Wait()

	if state := runner.ProcessState(); state == nil || state.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %v", state)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("expected child output, got %q", out.String())
	}
}

func TestPTYRunner_StartTwice(t *testing.T) {
	skipWithoutPTY(t)

	runner := NewPTYRunner()
	if err := runner.Start("sh", []string{"-c", "exit 0"}, os.Environ()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer func() { _ = runner.Wait() }()

	if err := runner.Start("sh", nil, os.Environ()); err == nil {
		t.Error("expected error on second start")
	}
}

func TestPTYRunner_NotStarted(t *testing.T) {
	runner := NewPTYRunner()

	if err := runner.Wait(); err == nil {
		t.Error("expected error waiting on unstarted runner")
	}
	if runner.Process() != nil || runner.ProcessState() != nil {
		t.Error("expected nil process before start")
	}
	if err := runner.Attach(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected error attaching before start")
	}
	if err := runner.Stop(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestManager_ExitCodeFromPTY(t *testing.T) {
	skipWithoutPTY(t)
	t.Setenv(WrappedEnv, "")

	m := newTestManager(NewPTYRunner())
	if err := m.Start("sh", []string{"-c", "exit 7"}); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	_ = m.Wait()

	if code := m.ExitCode(); code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
}
