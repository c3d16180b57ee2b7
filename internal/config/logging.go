package config

// GetLogLevel returns the configured log level name (trace, debug, info,
// warn, error). Unrecognized values fall back to info at setup time.
func GetLogLevel() string {
	return GetEnvOrDefault("LOG_LEVEL", "info")
}

// GetLogPretty reports whether logs use the human console format instead of
// structured JSON
func GetLogPretty() bool {
	return parseEnvBool("LOG_PRETTY", false)
}

// GetLogFile returns the optional path of a rotating log file. Empty means
// logs go to stderr only.
func GetLogFile() string {
	return GetEnvOrDefault("LOG_FILE", "")
}
