package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/logging"
)

// Config holds runtime settings for the resume CLI.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
	LogFormat      string
	Ephemeral      bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.RequestTimeout = 60 * time.Second
	c.DatabasePath = "resumecli.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.Ephemeral = false
}

// Validate reports the first setting that cannot be used as is.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid server url %q: expected http(s)://host[:port]", c.ServerURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if !c.Ephemeral && c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.LogFormat)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the environment (plus the .env
// file in the working directory), an optional JSON file and finally args.
// args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, dotEnvFile); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
