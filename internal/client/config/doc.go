// Package config loads runtime configuration for the resume CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory and RESUMECLI_* environment
//     variables. Real environment variables win over the .env file.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-s string     backend base URL, e.g. http://localhost:8000
//	-t duration   per-request timeout, e.g. 60s (0 disables it)
//	-d string     path of the SQLite token database
//	-l string     log level: debug, info, warn, error
//	-ephemeral    keep the credential in memory only
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "request_timeout": "60s",
//	  "database_path": "resumecli.db",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
