package config

import "time"

// GetPort returns the port the HTTP server listens on
func GetPort() string {
	return GetEnvOrDefault("PORT", "8080")
}

// GetShutdownTimeout returns how long a graceful shutdown may take before
// in-flight requests are abandoned
func GetShutdownTimeout() time.Duration {
	return parseEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
}
