// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the development backend.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside a laptop.
//   - AccessTokenValidityDuration: lifetime of issued access tokens.
//   - LogLevel: debug, info, warn or error.
//   - DemoEmail / DemoPassword: when both are set, an account is created at start.
type Config struct {
	EndpointAddr                string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
	DemoEmail                   string
	DemoPassword                string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8000"
	c.SecretKey = "change-me-in-production"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.LogLevel = "info"
	c.DemoEmail = ""
	c.DemoPassword = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags in args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key must not be empty")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	if (c.DemoEmail == "") != (c.DemoPassword == "") {
		return errors.New("demo email and demo password must be set together")
	}
	return nil
}
