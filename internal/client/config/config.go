package config

import "time"

// Config holds runtime settings for the client shell.
//
// Fields:
//   - BackendURL: base URL of the backend API.
//   - DatabasePath: SQLite file holding the cookie jar.
//   - RequestTimeout: per-request timeout of the HTTP transport.
//   - StaleTime: how long a fetched session is served before refetching.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	BackendURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	StaleTime      time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:3000"
	c.DatabasePath = "data/gophauth.db"
	c.RequestTimeout = 10 * time.Second
	c.StaleTime = 60 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
