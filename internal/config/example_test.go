package config_test

import (
	"fmt"
	"time"

	"github.com/clepsy/deskagent/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Global Cooldown:", cfg.Timing.GlobalCooldown)
	fmt.Println("AFK Timeout:", cfg.Timing.AfkTimeout)
	// Output:
	// Global Cooldown: 5s
	// AFK Timeout: 5m0s
}

// Example of creating configuration with environment variables
func ExampleNew() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	fmt.Println("Configuration loaded successfully")
	// Output:
	// Configuration loaded successfully
}

// Example of setting the global cooldown with validation
func ExampleConfig_SetGlobalCooldown() {
	cfg := config.Default()

	if err := cfg.SetGlobalCooldown(10 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Global cooldown set to:", cfg.Timing.GlobalCooldown)
	}

	// Invalid: exceeds same-window cooldown
	if err := cfg.SetGlobalCooldown(time.Hour); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Global cooldown set to: 10s
	// Error: global cooldown cannot exceed same-window cooldown (15s)
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}
