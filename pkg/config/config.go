package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Event sources.
const (
	SourceSSE   = "sse"
	SourceStdin = "stdin"
)

// Notification backends.
const (
	BackendPowerShell = "powershell"
	BackendToast      = "toast"
	BackendBeeep      = "beeep"
	BackendStdout     = "stdout"
)

// Config holds all configuration for opencode-idle-toast
type Config struct {
	// Event source settings
	Server    string `yaml:"server" env:"OPENCODE_IDLE_TOAST_SERVER"`
	Directory string `yaml:"directory" env:"OPENCODE_IDLE_TOAST_DIRECTORY"`
	Source    string `yaml:"source" env:"OPENCODE_IDLE_TOAST_SOURCE"`

	// Notification settings
	Backend        string `yaml:"backend" env:"OPENCODE_IDLE_TOAST_BACKEND"`
	PowerShellPath string `yaml:"powershell_path" env:"OPENCODE_IDLE_TOAST_POWERSHELL"`
	Title          string `yaml:"title" env:"OPENCODE_IDLE_TOAST_TITLE"`
	Body           string `yaml:"body" env:"OPENCODE_IDLE_TOAST_BODY"`

	// Behavior flags
	Quiet bool `yaml:"quiet" env:"OPENCODE_IDLE_TOAST_QUIET"`
	Debug bool `yaml:"debug" env:"OPENCODE_IDLE_TOAST_DEBUG"`

	// Reconnect backoff for the event stream
	Reconnect ReconnectConfig `yaml:"reconnect"`

	// Rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ReconnectConfig holds event stream reconnect configuration
type ReconnectConfig struct {
	BaseDelay time.Duration `yaml:"base_delay"`
	MaxDelay  time.Duration `yaml:"max_delay"`
}

// RateLimitConfig holds rate limiting configuration. A zero MaxMessages
// disables the cap.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server:         "http://127.0.0.1:4096",
		Source:         SourceSSE,
		Backend:        BackendPowerShell,
		PowerShellPath: "powershell.exe",
		Title:          "opencode",
		Body:           "Готово",
		Reconnect: ReconnectConfig{
			BaseDelay: 500 * time.Millisecond,
			MaxDelay:  10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window: 1 * time.Minute,
		},
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("OPENCODE_IDLE_TOAST_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "opencode-idle-toast", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "opencode-idle-toast", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	strs := map[string]*string{
		"OPENCODE_IDLE_TOAST_SERVER":     &cfg.Server,
		"OPENCODE_IDLE_TOAST_DIRECTORY":  &cfg.Directory,
		"OPENCODE_IDLE_TOAST_SOURCE":     &cfg.Source,
		"OPENCODE_IDLE_TOAST_BACKEND":    &cfg.Backend,
		"OPENCODE_IDLE_TOAST_POWERSHELL": &cfg.PowerShellPath,
		"OPENCODE_IDLE_TOAST_TITLE":      &cfg.Title,
		"OPENCODE_IDLE_TOAST_BODY":       &cfg.Body,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"OPENCODE_IDLE_TOAST_QUIET": &cfg.Quiet,
		"OPENCODE_IDLE_TOAST_DEBUG": &cfg.Debug,
	}
	for name, dst := range bools {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		switch v {
		case "true", "1", "yes":
			*dst = true
		case "false", "0", "no":
			*dst = false
		default:
			return fmt.Errorf("invalid %s value: %q (use true/false)", name, v)
		}
	}

	return nil
}

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceSSE, SourceStdin:
	default:
		return fmt.Errorf("unknown source %q (use %s or %s)", c.Source, SourceSSE, SourceStdin)
	}

	switch c.Backend {
	case BackendPowerShell, BackendToast, BackendBeeep, BackendStdout:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.Source == SourceSSE {
		u, err := url.Parse(c.Server)
		if err != nil {
			return fmt.Errorf("invalid server URL: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server must be an absolute http(s) URL, got %q", c.Server)
		}
	}

	if c.Backend == BackendPowerShell && strings.TrimSpace(c.PowerShellPath) == "" {
		return fmt.Errorf("powershell_path must not be empty")
	}

	if c.Reconnect.BaseDelay < 0 || c.Reconnect.MaxDelay < 0 {
		return fmt.Errorf("reconnect delays must be non-negative")
	}

	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return fmt.Errorf("reconnect.max_delay must be at least reconnect.base_delay")
	}

	if c.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rate_limit.max_messages must be non-negative")
	}

	if c.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit.window must be non-negative")
	}

	if c.RateLimit.MaxMessages > 0 && c.RateLimit.Window == 0 {
		return fmt.Errorf("rate_limit.window is required when rate_limit.max_messages is set")
	}

	return nil
}
