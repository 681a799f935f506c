package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Channel policies for images that are not three-channel RGB.
const (
	ChannelPolicyConvert = "convert"
	ChannelPolicyReject  = "reject"
)

type Config struct {
	Host              string
	Port              string
	GinMode           string
	LogLevel          string
	RequestTimeout    time.Duration
	ProcessingTimeout time.Duration

	// SecretKey signs the form's CSRF tokens.
	SecretKey    string
	CSRFTokenTTL time.Duration

	StaticDir          string
	MaxRequestBodySize int64
	MaxConcurrentJobs  int
	MaxBorderPercent   int
	JPEGQuality        int
	ChannelPolicy      string
	AutoOrient         bool
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return LoadFromEnv()
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ProcessingTimeout:  parseDurationOrDefault("PROCESSING_TIMEOUT", 20*time.Second),
		SecretKey:          os.Getenv("SECRET_KEY"),
		CSRFTokenTTL:       parseDurationOrDefault("CSRF_TOKEN_TTL", time.Hour),
		StaticDir:          getEnvOrDefault("STATIC_DIR", "static"),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32<<20),
		MaxConcurrentJobs:  int(parseIntOrDefault("MAX_CONCURRENT_JOBS", 0)),
		MaxBorderPercent:   int(parseIntOrDefault("MAX_BORDER_PERCENT", 500)),
		JPEGQuality:        int(parseIntOrDefault("JPEG_QUALITY", 95)),
		ChannelPolicy:      strings.ToLower(getEnvOrDefault("CHANNEL_POLICY", ChannelPolicyConvert)),
		AutoOrient:         parseBoolOrDefault("AUTO_ORIENT", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.RequestTimeout <= 0 || c.ProcessingTimeout <= 0 || c.CSRFTokenTTL <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, processing=%s, csrf=%s)",
			c.RequestTimeout, c.ProcessingTimeout, c.CSRFTokenTTL)
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}
	if strings.TrimSpace(c.StaticDir) == "" {
		return fmt.Errorf("STATIC_DIR must not be empty")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxConcurrentJobs < 0 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be >= 0 (got %d)", c.MaxConcurrentJobs)
	}
	if c.MaxBorderPercent < 0 {
		return fmt.Errorf("MAX_BORDER_PERCENT must be >= 0 (got %d)", c.MaxBorderPercent)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be within 1..100 (got %d)", c.JPEGQuality)
	}
	switch c.ChannelPolicy {
	case ChannelPolicyConvert, ChannelPolicyReject:
	default:
		return fmt.Errorf("invalid CHANNEL_POLICY: %q", c.ChannelPolicy)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
