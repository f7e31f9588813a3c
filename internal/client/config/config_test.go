package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:3000", c.BackendURL)
	assert.Equal(t, "data/gophauth.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, 60*time.Second, c.StaleTime)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:3000", cfg.BackendURL)
	assert.Equal(t, 60*time.Second, cfg.StaleTime)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"backend_url": "http://json:1",
		"stale_time":  "5s",
		"log_level":   "debug",
	})
	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.StaleTime)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data/gophauth.db", cfg.DatabasePath)
}
