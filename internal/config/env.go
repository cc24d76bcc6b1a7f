package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values.
func LoadFromEnv(cfg *Config) {
	// Pairing configuration
	if backendURL := os.Getenv("DESKAGENT_BACKEND_URL"); backendURL != "" {
		cfg.Pairing.BackendURL = backendURL
	}

	if token := os.Getenv("DESKAGENT_DEVICE_TOKEN"); token != "" {
		cfg.Pairing.DeviceToken = token
	}

	if name := os.Getenv("DESKAGENT_SOURCE_NAME"); name != "" {
		cfg.Pairing.SourceName = name
	}

	if id := os.Getenv("DESKAGENT_SOURCE_ID"); id != "" {
		cfg.Pairing.SourceID = id
	}

	if cfg.Pairing.BackendURL != "" && cfg.Pairing.DeviceToken != "" {
		cfg.Pairing.Active = true
	}

	// Timing configuration
	if maxSide := os.Getenv("DESKAGENT_SCREENSHOT_MAX_SIDE"); maxSide != "" {
		if px, err := strconv.Atoi(maxSide); err == nil && px > 0 {
			cfg.Timing.ScreenshotMaxSide = px
		}
	}

	if globalCD := os.Getenv("DESKAGENT_GLOBAL_COOLDOWN"); globalCD != "" {
		if seconds, err := strconv.Atoi(globalCD); err == nil && seconds > 0 {
			cfg.Timing.GlobalCooldown = time.Duration(seconds) * time.Second
		}
	}

	if sameWindowCD := os.Getenv("DESKAGENT_SAME_WINDOW_COOLDOWN"); sameWindowCD != "" {
		if seconds, err := strconv.Atoi(sameWindowCD); err == nil && seconds > 0 {
			cfg.Timing.SameWindowCooldown = time.Duration(seconds) * time.Second
		}
	}

	if constantWindowCD := os.Getenv("DESKAGENT_CONSTANT_WINDOW_COOLDOWN"); constantWindowCD != "" {
		if seconds, err := strconv.Atoi(constantWindowCD); err == nil && seconds > 0 {
			cfg.Timing.ConstantWindowCooldown = time.Duration(seconds) * time.Second
		}
	}

	if afkTimeout := os.Getenv("DESKAGENT_AFK_TIMEOUT"); afkTimeout != "" {
		if seconds, err := strconv.Atoi(afkTimeout); err == nil && seconds > 0 {
			cfg.Timing.AfkTimeout = time.Duration(seconds) * time.Second
		}
	}

	if pollInterval := os.Getenv("DESKAGENT_POLL_INTERVAL_MS"); pollInterval != "" {
		if ms, err := strconv.Atoi(pollInterval); err == nil && ms > 0 {
			cfg.Timing.ActiveWindowPollInterval = time.Duration(ms) * time.Millisecond
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("DESKAGENT_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}
}

// New creates a new Config with default values and loads from environment.
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
