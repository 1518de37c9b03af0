package notification

import (
	"fmt"
	"io"

	"github.com/Veraticus/opencode-idle-toast/pkg/config"
	"github.com/gen2brain/beeep"
)

// AppID is the application name toasts are posted under.
const AppID = "opencode"

// NewBackend returns the backend selected by cfg.Backend. Dry-run output goes
// to out.
func NewBackend(cfg *config.Config, out io.Writer) (Notifier, error) {
	switch cfg.Backend {
	case config.BackendPowerShell:
		return NewPowerShellNotifier(cfg.PowerShellPath, nil), nil
	case config.BackendToast:
		return NewToastNotifier(AppID), nil
	case config.BackendBeeep:
		beeep.AppName = AppID
		return NewBeeepNotifier(), nil
	case config.BackendStdout:
		return NewStdoutNotifier(out), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", cfg.Backend)
	}
}
