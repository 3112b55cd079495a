package session

import "time"

// Config holds configuration for the session controller
type Config struct {
	// RefreshInterval is how often a connected session reloads the local log
	// and recomputes balances
	RefreshInterval time.Duration

	// RefreshEnabled disables the background ticker when false (tests)
	RefreshEnabled bool
}

// DefaultConfig returns the default session configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: 30 * time.Second,
		RefreshEnabled:  true,
	}
}

// Validate validates the configuration, falling back to defaults for
// unusable values
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 30 * time.Second
	}
	return nil
}
