package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// Environment variables understood by parseEnv.
const (
	EnvServerURL      = "RESUMECLI_SERVER_URL"
	EnvRequestTimeout = "RESUMECLI_REQUEST_TIMEOUT"
	EnvDatabasePath   = "RESUMECLI_DB"
	EnvLogLevel       = "RESUMECLI_LOG_LEVEL"
	EnvLogFormat      = "RESUMECLI_LOG_FORMAT"
)

// parseEnv overlays cfg with RESUMECLI_* values. Values from envFile are
// used only when the variable is not set in the process environment.
// A missing envFile is not an error.
func parseEnv(cfg *Config, envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v), true
		}
		v, ok := fileVars[key]
		return strings.TrimSpace(v), ok
	}

	if v, ok := lookup(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := lookup(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	return nil
}
