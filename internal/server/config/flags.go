package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string               HTTP bind address (e.g., ":8000")
//	-s string               JWT HMAC secret key
//	-t int                  access token validity, minutes
//	-l string               log level
//	-demo-email string      email of the account created at start
//	-demo-password string   password of that account
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-l", "-demo-email", "-demo-password"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	validity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.DemoEmail, "demo-email", config.DemoEmail, "demo account email")
	fs.StringVar(&config.DemoPassword, "demo-password", config.DemoPassword, "demo account password")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*validity) * time.Minute
	return nil
}
