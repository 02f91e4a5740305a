package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process settings read from the environment.
type Config struct {
	Port     string
	BasePath string

	DatabaseURL string

	LogLevel  string
	LogFormat string
	LogFile   string

	RedisURL string
	CacheTTL time.Duration

	BreakerEnabled  bool
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	TracingEnabled bool

	ShutdownTimeout time.Duration
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		Port:            "3001",
		BasePath:        "/api/task",
		DatabaseURL:     "sqlite://tasks.db",
		LogLevel:        "info",
		LogFormat:       "text",
		CacheTTL:        time.Minute,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads the configuration from the environment over the defaults.
func Load() (*Config, error) {
	cfg := Default()

	stringVar("APP_PORT", &cfg.Port)
	stringVar("BASE_PATH", &cfg.BasePath)
	stringVar("DATABASE_URL", &cfg.DatabaseURL)
	stringVar("LOG_LEVEL", &cfg.LogLevel)
	stringVar("LOG_FORMAT", &cfg.LogFormat)
	stringVar("LOG_FILE", &cfg.LogFile)
	stringVar("REDIS_URL", &cfg.RedisURL)

	if err := durationVar("CACHE_TTL", &cfg.CacheTTL); err != nil {
		return nil, err
	}
	if err := boolVar("BREAKER_ENABLED", &cfg.BreakerEnabled); err != nil {
		return nil, err
	}
	if v := os.Getenv("BREAKER_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid BREAKER_FAILURES %q: must be a positive integer", v)
		}
		cfg.BreakerFailures = uint32(n)
	}
	if err := durationVar("BREAKER_TIMEOUT", &cfg.BreakerTimeout); err != nil {
		return nil, err
	}
	if err := boolVar("TRACING_ENABLED", &cfg.TracingEnabled); err != nil {
		return nil, err
	}
	if err := durationVar("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught while parsing.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid APP_PORT %q", c.Port)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("invalid BASE_PATH %q: must start with /", c.BasePath)
	}
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want text or json", c.LogFormat)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	return nil
}

func stringVar(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func durationVar(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	*dst = d
	return nil
}

func boolVar(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}
