package token

import (
	"errors"
	"time"
)

// Config configures the token codec.
type Config struct {
	// Secret is the process-wide HMAC signing key. Rotating it invalidates
	// every outstanding token.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// TTL is the lifetime of issued tokens (default: 30m).
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`

	// Issuer is the "iss" claim (optional).
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.TTL == 0 {
		c.TTL = 30 * time.Minute
	}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("token: secret is required")
	}
	if c.TTL <= 0 {
		return errors.New("token: ttl must be positive")
	}
	return nil
}
