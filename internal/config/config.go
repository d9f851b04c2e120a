package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Twitch      TwitchConfig
	Performance PerformanceConfig
	Logging     LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPPort      string
	GRPCPort      string
	ServerTimeout time.Duration
	PerAPITimeout time.Duration
	CORSOrigins   []string
}

// TwitchConfig holds Twitch API configuration
type TwitchConfig struct {
	ClientID     string
	BaseURL      string
	DefaultLimit int
	MaxLimit     int
	CallbackMode string
	PagePolicy   string
}

// PerformanceConfig holds performance tuning configuration
type PerformanceConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			HTTPPort:      getEnv("HTTP_SERVER_PORT", "8080"),
			GRPCPort:      getEnv("GRPC_SERVER_PORT", "50051"),
			ServerTimeout: getDurationEnv("SERVER_TIMEOUT_MS", 5000) * time.Millisecond,
			PerAPITimeout: getDurationEnv("PER_API_TIMEOUT_MS", 4000) * time.Millisecond,
			CORSOrigins:   getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Twitch: TwitchConfig{
			ClientID:     getEnv("TWITCH_CLIENT_ID", ""),
			BaseURL:      getEnv("TWITCH_API_BASE_URL", "https://api.twitch.tv/kraken/search/streams"),
			DefaultLimit: getIntEnv("TWITCH_DEFAULT_LIMIT", 5),
			MaxLimit:     getIntEnv("TWITCH_MAX_LIMIT", 100),
			CallbackMode: getEnv("TWITCH_CALLBACK_MODE", "json"),
			PagePolicy:   getEnv("TWITCH_PAGE_POLICY", "clamp"),
		},
		Performance: PerformanceConfig{
			RateLimitRPS:   getFloatEnv("TWITCH_RATE_LIMIT_RPS", 5),
			RateLimitBurst: getIntEnv("TWITCH_RATE_LIMIT_BURST", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	// The client id may also come with each request
	if c.Twitch.ClientID == "" {
		log.Println("WARNING: TWITCH_CLIENT_ID not set. Every request must carry its own token")
	}

	if c.Twitch.DefaultLimit <= 0 {
		return fmt.Errorf("TWITCH_DEFAULT_LIMIT must be positive, got %d", c.Twitch.DefaultLimit)
	}
	if c.Twitch.MaxLimit < c.Twitch.DefaultLimit {
		return fmt.Errorf("TWITCH_MAX_LIMIT (%d) cannot be lower than TWITCH_DEFAULT_LIMIT (%d)",
			c.Twitch.MaxLimit, c.Twitch.DefaultLimit)
	}

	switch c.Twitch.CallbackMode {
	case "json", "jsonp":
	default:
		return fmt.Errorf("invalid TWITCH_CALLBACK_MODE: %s (valid: json, jsonp)", c.Twitch.CallbackMode)
	}

	switch c.Twitch.PagePolicy {
	case "clamp", "wrap":
	default:
		return fmt.Errorf("invalid TWITCH_PAGE_POLICY: %s (valid: clamp, wrap)", c.Twitch.PagePolicy)
	}

	if err := validateOrigins(c.Server.CORSOrigins); err != nil {
		return err
	}

	if c.Server.PerAPITimeout <= 0 {
		return fmt.Errorf("PER_API_TIMEOUT_MS must be positive")
	}
	if c.Server.ServerTimeout < c.Server.PerAPITimeout {
		log.Println("WARNING: SERVER_TIMEOUT_MS is lower than PER_API_TIMEOUT_MS. Requests will be cut by the server timeout")
	}

	return nil
}

// validateOrigins accepts a lone "*" or a list of http(s) origins
func validateOrigins(origins []string) error {
	if len(origins) == 1 && origins[0] == "*" {
		return nil
	}

	for _, origin := range origins {
		if origin == "*" {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS: '*' cannot be combined with other origins")
		}
		if strings.Contains(origin, "*") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS: wildcard origins are not supported: %s", origin)
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS: origin must start with http:// or https://: %s", origin)
		}
	}

	return nil
}

// Helper functions to get environment variables with defaults

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid integer value for %s: %s. Using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getFloatEnv(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("WARNING: Invalid float value for %s: %s. Using default: %g", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("WARNING: Invalid duration value for %s: %s. Using default: %d", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}

	return time.Duration(value)
}

func getListEnv(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}

	return values
}
