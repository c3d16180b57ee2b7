package config

// GetAPIKey returns the optional static bearer key protecting the API
// surface. Empty means the proxy accepts unauthenticated requests, which is
// the default deployment mode behind a trusted network edge.
func GetAPIKey() string {
	return GetEnvOrDefault("API_KEY", "")
}
