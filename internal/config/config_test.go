package config

import (
	"testing"
	"time"
)

func TestLoad_HealthEndpoint(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", "/health"},
		{"leading slash", "/status", "/status"},
		{"missing slash", "health", "/health"},
		{"padded", " ready ", "/ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv("HEALTH_ENDPOINT", tt.env)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Health.Endpoint != tt.want {
				t.Errorf("Endpoint: got %v want %v", cfg.Health.Endpoint, tt.want)
			}
		})
	}
}

func TestParseMillis(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"250", 250 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"0", 5 * time.Second},
		{"soon", 5 * time.Second},
	}

	for _, tt := range tests {
		if got := ParseMillis(tt.in, 5*time.Second); got != tt.want {
			t.Errorf("ParseMillis(%q): got %v want %v", tt.in, got, tt.want)
		}
	}
}
