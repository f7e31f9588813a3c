// Package config handles configuration for the development backend,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - AccessTokenValidityDuration: lifetime of issued access tokens.
//   - SeedUsername / SeedPassword: account created at startup; empty username disables seeding.
//   - LogLevel: debug, info, warn or error.
//   - DatabaseDSN: PostgreSQL connection string; empty keeps users in memory.
type Config struct {
	ListenAddr                  string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	SeedUsername                string
	SeedPassword                string
	LogLevel                    string
	DatabaseDSN                 string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3000"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.SeedUsername = "demo"
	c.SeedPassword = "demo-password"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
