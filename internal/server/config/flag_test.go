package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-s", "secret", "-t", "15", "-u", "alice", "-p", "wonderland", "-l", "debug",
			"-d", "postgres://localhost/gophauth",
		}, expected: &Config{
			ListenAddr:                  "127.0.0.1:9090",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 15 * time.Minute,
			SeedUsername:                "alice",
			SeedPassword:                "wonderland",
			LogLevel:                    "debug",
			DatabaseDSN:                 "postgres://localhost/gophauth",
		}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{ListenAddr: ":1"}},
		{name: "bad minutes", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
