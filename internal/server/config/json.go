package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for the token lifetime, which allows both string
// values such as "15m" and integer nanoseconds.
type JsonConfig struct {
	ListenAddr                  string         `json:"listen_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	SeedUsername                string         `json:"seed_username"`
	SeedPassword                string         `json:"seed_password"`
	LogLevel                    string         `json:"log_level"`
	DatabaseDSN                 string         `json:"database_dsn"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config. Without either flag nothing is loaded. Keys missing from the file
// leave the current value alone. Read and unmarshal errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.ListenAddr != "" {
		config.ListenAddr = c.ListenAddr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SeedUsername != "" {
		config.SeedUsername = c.SeedUsername
	}
	if c.SeedPassword != "" {
		config.SeedPassword = c.SeedPassword
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
}
