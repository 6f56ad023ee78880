// Package config provides configuration management for the enrichment
// service. It handles loading configuration from environment variables
// with sensible defaults and validates the configuration to ensure the
// application starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - PUBLIC_URL: Externally reachable base URL advertised to providers
//     for async callbacks (default: http://localhost:8080). On managed
//     platforms set this to the platform-provided public hostname.
//
// Provider Configuration:
//   - APOLLO_API_KEY: Apollo.io API key (required)
//   - APOLLO_BASE_URL: Apollo.io API base URL (default: https://api.apollo.io)
//   - PROSPEO_API_KEY: Prospeo email-finder API key (optional)
//   - MILLIONVERIFIER_API_KEY: MillionVerifier API key (optional)
//
// Async Phone Delivery:
//   - PHONE_WAIT_TIMEOUT: Bounded wait for the provider's phone callback
//     (default: 30s)
//   - PAYLOAD_MAX_AGE: Age after which unclaimed callback payloads are
//     swept (default: 1h)
//   - SWEEP_INTERVAL: Cadence of the payload sweep (default: 5m)
//
// Storage:
//   - DATABASE_PATH: SQLite usage ledger file path (default: ./enrich_service.db)
//   - REDIS_ADDRESS: Redis address for the enrichment result cache
//     (optional; cache disabled when empty)
//   - REDIS_PASSWORD: Redis password
//   - CACHE_TTL: Result cache TTL (default: 24h)
//
// Google Sheets:
//   - SHEETS_CREDENTIALS_FILE: Service-account credentials file for the
//     Sheets sink (optional; sink disabled when empty)
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values for the enrichment service.
// All fields correspond to environment variables that can be set to
// override the default values.
//
// The configuration is loaded using the Load() function and should be
// validated using the Validate() method before use.
type Config struct {
	// Application settings
	Port      string // Server port number
	LogLevel  string // Logging level (debug, info, warn, error)
	PublicURL string // Externally reachable base URL for callbacks

	// Provider configuration
	ApolloAPIKey          string // Apollo.io API key (required)
	ApolloBaseURL         string // Apollo.io API base URL
	ProspeoAPIKey         string // Prospeo API key (optional)
	MillionVerifierAPIKey string // MillionVerifier API key (optional)

	// Async phone delivery
	PhoneWaitTimeout time.Duration // Bounded wait for the phone callback
	PayloadMaxAge    time.Duration // Max age of unclaimed callback payloads
	SweepInterval    time.Duration // Cadence of the payload sweep

	// Storage
	DatabasePath  string        // SQLite usage ledger path
	RedisAddress  string        // Redis address for the result cache
	RedisPassword string        // Redis password
	CacheTTL      time.Duration // Result cache TTL

	// Google Sheets
	SheetsCredentialsFile string // Service-account credentials file
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding
// default value is used.
//
// This function does not validate the configuration - call Validate() on
// the returned Config to ensure all required values are properly set.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		PublicURL: getEnv("PUBLIC_URL", "http://localhost:8080"),

		ApolloAPIKey:          getEnv("APOLLO_API_KEY", ""),
		ApolloBaseURL:         getEnv("APOLLO_BASE_URL", "https://api.apollo.io"),
		ProspeoAPIKey:         getEnv("PROSPEO_API_KEY", ""),
		MillionVerifierAPIKey: getEnv("MILLIONVERIFIER_API_KEY", ""),

		PhoneWaitTimeout: getDurationEnv("PHONE_WAIT_TIMEOUT", 30*time.Second),
		PayloadMaxAge:    getDurationEnv("PAYLOAD_MAX_AGE", time.Hour),
		SweepInterval:    getDurationEnv("SWEEP_INTERVAL", 5*time.Minute),

		DatabasePath:  getEnv("DATABASE_PATH", "./enrich_service.db"),
		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      getDurationEnv("CACHE_TTL", 24*time.Hour),

		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),
	}
}

// CallbackURL returns the full callback URL advertised to the enrichment
// provider for asynchronous phone delivery.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/webhooks/apollo"
}

// Validate performs validation on the configuration to ensure all
// required fields are present and all values are valid.
//
// The application should call this method after loading configuration
// and before starting to ensure safe operation.
func (c *Config) Validate() error {
	if c.ApolloAPIKey == "" {
		return fmt.Errorf("APOLLO_API_KEY environment variable is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	parsed, err := url.Parse(c.PublicURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("PUBLIC_URL must be an absolute URL")
	}

	if c.PhoneWaitTimeout <= 0 {
		return fmt.Errorf("PHONE_WAIT_TIMEOUT must be a positive duration")
	}

	if c.PayloadMaxAge <= 0 {
		return fmt.Errorf("PAYLOAD_MAX_AGE must be a positive duration")
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be a positive duration")
	}

	return nil
}

// getEnv retrieves an environment variable value or returns a default
// value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves a duration environment variable value or
// returns a default value if not set or invalid.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
