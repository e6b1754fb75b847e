package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/decred/slog"

	"github.com/777genius/audiodevice/internal/endpoint"
	"github.com/777genius/audiodevice/internal/platform"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "AUDIODEVICE_CONFIG"

// Config represents the tool configuration
type Config struct {
	LogLevel string      `json:"logLevel"` // slog level: trace, debug, info, warn, error, critical, off
	LogFile  string      `json:"logFile"`  // default: per-user state dir, "" disables the file
	Confirm  string      `json:"confirm"`  // "roles" (default), "optimistic", "verify"
	Notify   bool        `json:"notify"`   // Show a desktop notification after a change
	Chime    ChimeConfig `json:"chime"`
}

// ChimeConfig represents the confirmation sound played by /test
type ChimeConfig struct {
	Volume float64 `json:"volume"` // 0.0-1.0, default 0.5
	Sound  string  `json:"sound"`  // Audio file to play instead of the built-in tone (empty = tone)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		LogFile:  DefaultLogFile(),
		Confirm:  "roles",
		Chime: ChimeConfig{
			Volume: 0.5,
		},
	}
}

// DefaultPath returns the config file location: $AUDIODEVICE_CONFIG, else the
// per-user config dir.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return platform.ExpandEnv(p)
	}
	p, err := xdg.SearchConfigFile("audiodevice/config.json")
	if err != nil {
		return ""
	}
	return p
}

// DefaultLogFile returns the per-user log file path, or "" if it cannot be created.
func DefaultLogFile() string {
	p, err := xdg.StateFile("audiodevice/audiodevice.log")
	if err != nil {
		return ""
	}
	return p
}

// Load loads configuration from a file
// If the file doesn't exist, returns default config
func Load(path string) (*Config, error) {
	if !platform.FileExists(path) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.LogFile = platform.ExpandEnv(config.LogFile)
	config.Chime.Sound = platform.ExpandEnv(config.Chime.Sound)

	config.ApplyDefaults()

	return config, nil
}

// LoadDefault loads the config from DefaultPath
func LoadDefault() (*Config, error) {
	return Load(DefaultPath())
}

// ApplyDefaults fills in missing fields with default values
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Confirm == "" {
		c.Confirm = "roles"
	}
	if c.Chime.Volume == 0 {
		c.Chime.Volume = 0.5
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, ok := slog.LevelFromString(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: trace, debug, info, warn, error, critical, off)", c.LogLevel)
	}

	if _, err := c.ConfirmPolicy(); err != nil {
		return err
	}

	if c.Chime.Volume < 0.0 || c.Chime.Volume > 1.0 {
		return fmt.Errorf("chime volume must be between 0.0 and 1.0 (got %.2f)", c.Chime.Volume)
	}

	return nil
}

// ConfirmPolicy maps the confirm setting to an endpoint.Confirm
func (c *Config) ConfirmPolicy() (endpoint.Confirm, error) {
	switch c.Confirm {
	case "", "roles":
		return endpoint.ConfirmRoles, nil
	case "optimistic":
		return endpoint.ConfirmOptimistic, nil
	case "verify":
		return endpoint.ConfirmVerify, nil
	default:
		return 0, fmt.Errorf("invalid confirm mode: %s (must be one of: roles, optimistic, verify)", c.Confirm)
	}
}
