package config

import (
	"fmt"
)

type Config struct {
	Env         string
	HTTPAddr    string
	DatabaseURL string
	// LateAfterMin is the default late threshold in minutes: a check-in
	// registered after createdAt plus this threshold is classified late.
	// Individual sessions may override it at creation time.
	LateAfterMin int
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.LateAfterMin <= 0 {
		return fmt.Errorf("LATE_AFTER_MIN must be positive, got %d", c.LateAfterMin)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
