package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/resumecli/internal/flagx"
	"github.com/dmitrijs2005/resumecli/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration,
// so "30m" and integer nanoseconds both work. Absent fields keep their
// current value.
type JsonConfig struct {
	EndpointAddr                *string         `json:"endpoint_addr"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	LogLevel                    *string         `json:"log_level"`
	DemoEmail                   *string         `json:"demo_email"`
	DemoPassword                *string         `json:"demo_password"`
}

// parseJSON loads the file named by -c or -config in args into config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var c JsonConfig
	if err := json.Unmarshal(file, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&config.EndpointAddr, c.EndpointAddr)
	setIf(&config.SecretKey, c.SecretKey)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.DemoEmail, c.DemoEmail)
	setIf(&config.DemoPassword, c.DemoPassword)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
