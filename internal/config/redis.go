package config

// GetRedisURL returns the optional Redis address for credential persistence.
// Empty means the in-memory store is used instead.
func GetRedisURL() string {
	return GetEnvOrDefault("REDIS_URL", "")
}

// GetRedisPassword returns the optional Redis password
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
