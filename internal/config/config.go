package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Upstream  UpstreamConfig
	Health    HealthConfig
	WebSocket WebSocketConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
	ServiceName     string
	Version         string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains the secret shared with the auth service for bearer tokens
type AuthConfig struct {
	JWTSecret string
}

// UpstreamConfig contains the services the gateway proxy forwards to
type UpstreamConfig struct {
	AnalyticsServiceURL string
	GatewayURL          string
	Timeout             time.Duration
}

// HealthConfig contains probe and aggregation settings
type HealthConfig struct {
	Endpoint         string
	Timeout          time.Duration
	ExternalServices []ExternalService
	MemoryWarning    float64
	MemoryCritical   float64
	CPUWarning       float64
	CPUCritical      float64
	MonitorSchedule  string
}

// ExternalService is a named dependency probed over HTTP
type ExternalService struct {
	Name     string
	URL      string
	Required bool
}

// WebSocketConfig contains the realtime listener settings
type WebSocketConfig struct {
	Enabled bool
	Port    int
}

// RateLimitConfig contains per-client rate limits
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// TracingConfig selects the span exporter
type TracingConfig struct {
	Exporter string // none, stdout or otlp
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	services, err := parseExternalServices(getEnv("HEALTH_EXTERNAL_SERVICES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("PORT", 3000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ServiceName:     getEnv("SERVICE_NAME", "linkboost-api"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "linkboost"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./linkboost.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Upstream: UpstreamConfig{
			AnalyticsServiceURL: getEnv("ANALYTICS_SERVICE_URL", "http://localhost:3002"),
			GatewayURL:          getEnv("KONG_GATEWAY_URL", getEnv("NEXT_PUBLIC_API_URL", "http://localhost:8000")),
			Timeout:             getEnvAsDuration("PROXY_TIMEOUT", 30*time.Second),
		},
		Health: HealthConfig{
			Endpoint:         NormalizePath(getEnv("HEALTH_ENDPOINT", "/health")),
			Timeout:          getEnvAsMillis("HEALTH_TIMEOUT", 5*time.Second),
			ExternalServices: services,
			MemoryWarning:    getEnvAsFloat("HEALTH_MEMORY_WARN", 0.80),
			MemoryCritical:   getEnvAsFloat("HEALTH_MEMORY_CRIT", 0.95),
			CPUWarning:       getEnvAsFloat("HEALTH_CPU_WARN", 0.70),
			CPUCritical:      getEnvAsFloat("HEALTH_CPU_CRIT", 0.90),
			MonitorSchedule:  getEnv("HEALTH_MONITOR_SCHEDULE", "@every 30s"),
		},
		WebSocket: WebSocketConfig{
			Enabled: getEnvAsBool("WS_ENABLED", false),
			Port:    getEnvAsInt("WS_PORT", 3001),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 50),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Exporter: getEnv("TRACING_EXPORTER", "none"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.WebSocket.Enabled && (c.WebSocket.Port < 1 || c.WebSocket.Port > 65535 || c.WebSocket.Port == c.Server.Port) {
		return fmt.Errorf("invalid websocket port: %d", c.WebSocket.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	for _, raw := range []string{c.Upstream.AnalyticsServiceURL, c.Upstream.GatewayURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid upstream URL: %q", raw)
		}
	}

	if c.Health.MemoryWarning >= c.Health.MemoryCritical {
		return fmt.Errorf("HEALTH_MEMORY_WARN must be below HEALTH_MEMORY_CRIT")
	}
	if c.Health.CPUWarning >= c.Health.CPUCritical {
		return fmt.Errorf("HEALTH_CPU_WARN must be below HEALTH_CPU_CRIT")
	}

	return nil
}

// IsProduction reports whether detailed error messages must be hidden
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// parseExternalServices reads "name=url,name2=url2?". A trailing "?" on the
// URL marks the dependency optional.
func parseExternalServices(raw string) ([]ExternalService, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var out []ExternalService
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, target, ok := strings.Cut(item, "=")
		if !ok || name == "" || target == "" {
			return nil, fmt.Errorf("malformed HEALTH_EXTERNAL_SERVICES entry %q", item)
		}
		svc := ExternalService{Name: strings.TrimSpace(name), Required: true}
		if strings.HasSuffix(target, "?") {
			svc.Required = false
			target = strings.TrimSuffix(target, "?")
		}
		if _, err := url.ParseRequestURI(target); err != nil {
			return nil, fmt.Errorf("invalid URL for %s: %w", svc.Name, err)
		}
		svc.URL = target
		out = append(out, svc)
	}
	return out, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// NormalizePath trims p and gives it the leading slash a route pattern needs
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// getEnvAsMillis accepts a bare integer (milliseconds) or a Go duration string.
func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	return ParseMillis(os.Getenv(key), defaultValue)
}

// ParseMillis parses "5000" as 5000ms and "5s" as a duration. Empty, invalid
// or non-positive values yield def.
func ParseMillis(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
