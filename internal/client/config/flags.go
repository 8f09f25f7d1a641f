package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/resumecli/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-s string     backend base URL
//	-t duration   per-request timeout
//	-d string     token database path
//	-l string     log level
//	-ephemeral    in-memory credential storage
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// components (-c, -config) do not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-s", "-t", "-d", "-l", "-ephemeral"})

	fs := flag.NewFlagSet("resumecli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "token database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", cfg.Ephemeral, "keep the credential in memory only")

	return fs.Parse(args)
}
