// Package config loads runtime configuration for the client shell.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   cookie jar database path
//	-t int      request timeout (seconds)
//	-s int      session stale time (seconds)
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "backend_url": "http://127.0.0.1:3000",
//	  "database_path": "data/gophauth.db",
//	  "request_timeout": "10s",
//	  "stale_time": "1m",
//	  "log_level": "info"
//	}
package config
