package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the terminal client.
type Config struct {
	// Backend configuration
	ServerURL   string
	HTTPTimeout time.Duration

	// Token storage
	TokenFile string

	// Rendering configuration
	PageSize int
	NoColor  bool

	// Logging configuration
	LogLevel string
}

// StubConfig holds all configuration for the local development backend.
type StubConfig struct {
	// Server configuration
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Token issuance
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Fixture data
	Seed bool

	// Logging configuration
	LogLevel string
}

// Load loads client configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:   getEnv("OTAKU_SERVER_URL", "http://localhost:8080"),
		HTTPTimeout: getEnvDuration("OTAKU_HTTP_TIMEOUT", 15*time.Second),
		TokenFile:   getEnv("OTAKU_TOKEN_FILE", defaultTokenFile()),
		PageSize:    getEnvInt("OTAKU_PAGE_SIZE", 20),
		NoColor:     getEnvBool("OTAKU_NO_COLOR", false),
		LogLevel:    getEnv("OTAKU_LOG_LEVEL", "warn"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStub loads stub backend configuration from environment variables.
func LoadStub() (*StubConfig, error) {
	cfg := &StubConfig{
		Port:         getEnv("STUB_PORT", "8080"),
		ReadTimeout:  getEnvDuration("STUB_READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvDuration("STUB_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getEnvDuration("STUB_IDLE_TIMEOUT", 120*time.Second),
		JWTSecret:    getEnv("STUB_JWT_SECRET", "otaku-wireframe-dev-secret"),
		AccessTTL:    getEnvDuration("STUB_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:   getEnvDuration("STUB_REFRESH_TTL", 7*24*time.Hour),
		Seed:         getEnvBool("STUB_SEED", true),
		LogLevel:     getEnv("STUB_LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate validates the client configuration.
func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("OTAKU_SERVER_URL is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OTAKU_SERVER_URL must be an absolute URL")
	}
	if c.TokenFile == "" {
		return fmt.Errorf("OTAKU_TOKEN_FILE is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("OTAKU_PAGE_SIZE must be at least 1")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("OTAKU_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validate validates the stub backend configuration.
func (c *StubConfig) validate() error {
	if c.Port == "" {
		return fmt.Errorf("STUB_PORT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("STUB_JWT_SECRET is required")
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("STUB_ACCESS_TTL must be positive")
	}
	if c.RefreshTTL <= c.AccessTTL {
		return fmt.Errorf("STUB_REFRESH_TTL must exceed STUB_ACCESS_TTL")
	}
	return nil
}

// defaultTokenFile places the token file under the platform config dir,
// falling back to a dotfile in the working directory when the config dir
// cannot be resolved.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".otaku-tokens.json"
	}
	return filepath.Join(dir, "otaku-wireframe", "tokens.json")
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as bool with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
