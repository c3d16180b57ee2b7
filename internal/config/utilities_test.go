package config

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns default when env not set",
			key:          "TEST_KEY_1",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
		{
			name:         "returns env value when set",
			key:          "TEST_KEY_2",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := GetEnvOrDefault(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("GetEnvOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{
			name:     "returns default when unset",
			envValue: "",
			want:     42,
		},
		{
			name:     "parses valid integer",
			envValue: "120",
			want:     120,
		},
		{
			name:     "returns default for invalid integer",
			envValue: "not-a-number",
			want:     42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_INT_KEY", tt.envValue)
			}

			got := parseEnvInt("TEST_INT_KEY", 42)
			if got != tt.want {
				t.Errorf("parseEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     bool
	}{
		{
			name:     "returns default when unset",
			envValue: "",
			want:     true,
		},
		{
			name:     "parses false",
			envValue: "false",
			want:     false,
		},
		{
			name:     "returns default for invalid boolean",
			envValue: "maybe",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_BOOL_KEY", tt.envValue)
			}

			got := parseEnvBool("TEST_BOOL_KEY", true)
			if got != tt.want {
				t.Errorf("parseEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{
			name:     "returns default when unset",
			envValue: "",
			want:     time.Minute,
		},
		{
			name:     "parses valid duration",
			envValue: "90s",
			want:     90 * time.Second,
		},
		{
			name:     "returns default for invalid duration",
			envValue: "soon",
			want:     time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_DURATION_KEY", tt.envValue)
			}

			got := parseEnvDuration("TEST_DURATION_KEY", time.Minute)
			if got != tt.want {
				t.Errorf("parseEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
