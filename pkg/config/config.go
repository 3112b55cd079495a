package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Redis configuration (transaction log + session restore keys)
	RedisURL      string
	RedisPassword string

	// JWT configuration
	JWTSecret string

	// AccessPassphraseHash is the bcrypt hash the single operator logs in with
	AccessPassphraseHash string

	// Wallet bridge (CIP-30 capability endpoint)
	WalletBridgeURL string

	// Koios indexer configuration
	KoiosMainnetURLs []string
	KoiosTestnetURLs []string
	CorsRelayURL     string

	// Session behaviour
	RefreshInterval time.Duration
	PendingGrace    time.Duration

	// Payment configuration
	PaymentRecipient string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		RedisURL:             getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		AccessPassphraseHash: getEnv("ACCESS_PASSPHRASE_HASH", ""),
		WalletBridgeURL:      getEnv("WALLET_BRIDGE_URL", "http://localhost:3900"),
		KoiosMainnetURLs:     getEnvAsList("KOIOS_MAINNET_URLS", "https://api.koios.rest/api/v1"),
		KoiosTestnetURLs:     getEnvAsList("KOIOS_TESTNET_URLS", "https://preprod.koios.rest/api/v1,https://preview.koios.rest/api/v1"),
		CorsRelayURL:         getEnv("CORS_RELAY_URL", ""),
		RefreshInterval:      getEnvAsDuration("SESSION_REFRESH_INTERVAL", 30*time.Second),
		PendingGrace:         getEnvAsDuration("PENDING_GRACE_PERIOD", 2*time.Minute),
		PaymentRecipient:     getEnv("PAYMENT_RECIPIENT_ADDRESS", ""),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if len(c.KoiosMainnetURLs) == 0 && len(c.KoiosTestnetURLs) == 0 {
		return fmt.Errorf("at least one Koios base URL is required")
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("SESSION_REFRESH_INTERVAL must be positive")
	}

	if c.PendingGrace <= 0 {
		return fmt.Errorf("PENDING_GRACE_PERIOD must be positive")
	}

	// Access passphrase is required in production but optional in development
	if c.AccessPassphraseHash == "" && c.IsProduction() {
		return fmt.Errorf("ACCESS_PASSPHRASE_HASH is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList gets a comma-separated environment variable as a string slice
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
