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

	assert.Equal(t, ":3000", c.ListenAddr)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "demo", c.SeedUsername)
	assert.Equal(t, "demo-password", c.SeedPassword)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.DatabaseDSN)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, ":3000", c.ListenAddr)
	assert.Equal(t, 60*time.Minute, c.AccessTokenValidityDuration)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"listen_addr": ":4000",
		"secret_key":  "from-json",
	})
	os.Args = []string{"testbin", "-config", path, "-s", "from-flag"}

	c := LoadConfig()

	assert.Equal(t, ":4000", c.ListenAddr)
	assert.Equal(t, "from-flag", c.SecretKey)
	assert.Equal(t, "demo", c.SeedUsername)
}
