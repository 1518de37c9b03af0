package notification

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf16"

	"github.com/Veraticus/opencode-idle-toast/pkg/interfaces"
)

// burntToastMissing is the exit code the script uses when the BurntToast
// module cannot be imported.
const burntToastMissing = 3

// psQuotes are the characters PowerShell accepts as a single-quote delimiter
// inside a verbatim string. Each one is escaped by doubling it.
var psQuotes = strings.NewReplacer(
	"'", "''",
	"‘", "‘‘",
	"’", "’’",
	"‚", "‚‚",
	"‛", "‛‛",
)

// EscapePowerShell escapes s for use inside a single-quoted PowerShell
// string literal.
func EscapePowerShell(s string) string {
	return psQuotes.Replace(s)
}

// BurntToastScript returns the one-line script that shows a BurntToast
// notification with the given title and body.
func BurntToastScript(title, body string) string {
	return strings.Join([]string{
		"$ErrorActionPreference = 'SilentlyContinue'",
		"Import-Module BurntToast",
		fmt.Sprintf("if (-not (Get-Module BurntToast)) { exit %d }", burntToastMissing),
		fmt.Sprintf("New-BurntToastNotification -Text '%s','%s' | Out-Null",
			EscapePowerShell(title), EscapePowerShell(body)),
	}, "; ")
}

// EncodeCommand encodes a script for powershell -EncodedCommand: base64 over
// UTF-16LE. This keeps non-ASCII text intact regardless of the console code
// page.
func EncodeCommand(script string) string {
	units := utf16.Encode([]rune(script))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// execRunner runs commands for real.
type execRunner struct{}

func (execRunner) Run(_ context.Context, cmd *exec.Cmd) error {
	return cmd.Run()
}

// PowerShellNotifier shows toast notifications through the BurntToast
// PowerShell module. The console window is never shown.
type PowerShellNotifier struct {
	path   string
	runner interfaces.CommandRunner
}

// NewPowerShellNotifier creates a notifier that runs the PowerShell binary at
// path (powershell.exe, pwsh.exe, or a full path). A nil runner runs the
// command for real.
func NewPowerShellNotifier(path string, runner interfaces.CommandRunner) *PowerShellNotifier {
	if runner == nil {
		runner = execRunner{}
	}
	return &PowerShellNotifier{
		path:   path,
		runner: runner,
	}
}

// Args returns the argument vector passed to PowerShell for a notification.
func (p *PowerShellNotifier) Args(notification Notification) []string {
	return []string{
		"-NoProfile",
		"-NonInteractive",
		"-ExecutionPolicy", "Bypass",
		"-WindowStyle", "Hidden",
		"-EncodedCommand", EncodeCommand(BurntToastScript(notification.Title, notification.Message)),
	}
}

// Command builds the hidden PowerShell command for a notification.
func (p *PowerShellNotifier) Command(ctx context.Context, notification Notification) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.path, p.Args(notification)...)
	hideWindow(cmd)
	return cmd
}

// Send runs PowerShell and waits for it to exit.
func (p *PowerShellNotifier) Send(ctx context.Context, notification Notification) error {
	err := p.runner.Run(ctx, p.Command(ctx, notification))
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == burntToastMissing {
		return fmt.Errorf("%w: BurntToast module not available", ErrDeliveryFailed)
	}
	return fmt.Errorf("%w: %s: %v", ErrDeliveryFailed, p.path, err)
}
