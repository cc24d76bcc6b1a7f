package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all agent configuration.
type Config struct {
	// Pairing configuration
	Pairing PairingConfig

	// Timing configuration
	Timing TimingConfig

	// Daemon configuration
	Daemon DaemonConfig
}

// PairingConfig identifies the backend and this device to it.
type PairingConfig struct {
	BackendURL  string // base URL of the aggregation backend
	DeviceToken string // bearer token presented on every request
	SourceName  string // human-readable name for this device
	SourceID    string // stable device identifier
	Active      bool   // whether pairing has completed; gates all network I/O
}

// TimingConfig holds the scheduler's cooldowns and capture sizing.
type TimingConfig struct {
	ScreenshotMaxSide        int           // configured longest screenshot edge; captures are not downscaled to it
	GlobalCooldown           time.Duration // minimum gap between any two captures
	SameWindowCooldown       time.Duration // minimum gap between captures of an unchanged window
	ConstantWindowCooldown   time.Duration // heartbeat interval while a single window stays focused
	AfkTimeout               time.Duration // idle duration before AFK is declared
	ActiveWindowPollInterval time.Duration // how often the active window is polled
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
}

// Default returns a Config with the same timing values as the original
// implementation's config.py.
func Default() *Config {
	return &Config{
		Pairing: PairingConfig{
			BackendURL: "",
			Active:     false,
		},
		Timing: TimingConfig{
			ScreenshotMaxSide:        1024,
			GlobalCooldown:           5 * time.Second,
			SameWindowCooldown:       15 * time.Second,
			ConstantWindowCooldown:   30 * time.Second,
			AfkTimeout:               5 * time.Minute,
			ActiveWindowPollInterval: 200 * time.Millisecond,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/deskagent-%d.pid", os.Getuid()),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Timing.ScreenshotMaxSide <= 0 {
		return fmt.Errorf("screenshot max side must be positive, got %d", c.Timing.ScreenshotMaxSide)
	}

	if c.Timing.GlobalCooldown <= 0 {
		return fmt.Errorf("global cooldown must be positive")
	}

	if c.Timing.SameWindowCooldown < c.Timing.GlobalCooldown {
		return fmt.Errorf("same-window cooldown (%v) cannot be less than global cooldown (%v)",
			c.Timing.SameWindowCooldown, c.Timing.GlobalCooldown)
	}

	if c.Timing.ConstantWindowCooldown < c.Timing.SameWindowCooldown {
		return fmt.Errorf("constant-window cooldown (%v) cannot be less than same-window cooldown (%v)",
			c.Timing.ConstantWindowCooldown, c.Timing.SameWindowCooldown)
	}

	if c.Timing.AfkTimeout <= 0 {
		return fmt.Errorf("afk timeout must be positive")
	}

	if c.Timing.ActiveWindowPollInterval <= 0 {
		return fmt.Errorf("active window poll interval must be positive")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	if c.Pairing.Active && c.Pairing.BackendURL == "" {
		return fmt.Errorf("pairing marked active but backend URL is empty")
	}

	return nil
}

// SetGlobalCooldown sets the global cooldown with validation against the
// same-window cooldown it must stay under.
func (c *Config) SetGlobalCooldown(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("global cooldown must be positive")
	}
	if d > c.Timing.SameWindowCooldown {
		return fmt.Errorf("global cooldown cannot exceed same-window cooldown (%v)", c.Timing.SameWindowCooldown)
	}
	c.Timing.GlobalCooldown = d
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Pairing:
    Backend URL: %s
    Source Name: %s
    Source ID: %s
    Active: %v
  Timing:
    Screenshot Max Side: %d
    Global Cooldown: %v
    Same Window Cooldown: %v
    Constant Window Cooldown: %v
    AFK Timeout: %v
    Active Window Poll Interval: %v
  Daemon:
    PID File: %s`,
		c.Pairing.BackendURL,
		c.Pairing.SourceName,
		c.Pairing.SourceID,
		c.Pairing.Active,
		c.Timing.ScreenshotMaxSide,
		c.Timing.GlobalCooldown,
		c.Timing.SameWindowCooldown,
		c.Timing.ConstantWindowCooldown,
		c.Timing.AfkTimeout,
		c.Timing.ActiveWindowPollInterval,
		c.Daemon.PIDFile,
	)
}
