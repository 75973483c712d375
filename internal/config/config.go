// Package config provides configuration for the armctl daemon and tools:
// environment helpers for runtime settings and a YAML arm profile for the
// physical constants (limits, link lengths, presets, gesture library).
package config

import "os"

// Defaults for the daemon.
const (
	DefaultHTTPPort   = "8090"
	DefaultSerialBaud = 115200
)

// HTTPPort returns the daemon HTTP port from ARMCTL_HTTP_PORT.
func HTTPPort() string {
	if port := os.Getenv("ARMCTL_HTTP_PORT"); port != "" {
		return port
	}
	return DefaultHTTPPort
}

// SerialPort returns the controller serial device from ARMCTL_SERIAL_PORT.
// Empty means no hardware: the daemon runs against a mock transport.
func SerialPort() string {
	return os.Getenv("ARMCTL_SERIAL_PORT")
}

// LogLevel returns the log level from ARMCTL_LOG_LEVEL ("info" if unset).
func LogLevel() string {
	if lvl := os.Getenv("ARMCTL_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// ProfilePath returns the arm profile path from ARMCTL_PROFILE.
// Empty means built-in defaults.
func ProfilePath() string {
	return os.Getenv("ARMCTL_PROFILE")
}
