package config

import "time"

// The credential variables carry the two Google session cookies the backend
// requires. Their names follow the cookie names the browser extension
// harvests from gemini.google.com.

// GetSecure1PSID returns the __Secure-1PSID cookie value
func GetSecure1PSID() string {
	return GetEnvOrDefault("SECURE_1PSID", "")
}

// GetSecure1PSIDTS returns the __Secure-1PSIDTS cookie value
func GetSecure1PSIDTS() string {
	return GetEnvOrDefault("SECURE_1PSIDTS", "")
}

// GetGeminiProxy returns the optional outbound proxy URL applied to all
// backend network activity
func GetGeminiProxy() string {
	return GetEnvOrDefault("GEMINI_PROXY", "")
}

// GetGeminiTimeout returns the per-call timeout for backend initialization
// and buffered generate calls. Streaming calls are bounded by the client
// connection instead.
func GetGeminiTimeout() time.Duration {
	return parseEnvDuration("GEMINI_TIMEOUT", 300*time.Second)
}

// GetAutoRefresh reports whether the background cookie rotation is enabled
func GetAutoRefresh() bool {
	return parseEnvBool("GEMINI_AUTO_REFRESH", true)
}

// GetRefreshInterval returns how often the __Secure-1PSIDTS cookie is
// rotated. The web client renews it roughly every nine minutes.
func GetRefreshInterval() time.Duration {
	return parseEnvDuration("GEMINI_REFRESH_INTERVAL", 9*time.Minute)
}
