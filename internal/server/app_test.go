package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.ListenAddr = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_SeedsUser(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)

	sess, err := app.userService.Login(context.Background(), "demo", "demo-password")
	require.NoError(t, err)
	assert.Equal(t, "demo", sess.User.UserName)

	_, err = app.userService.Login(context.Background(), "demo", "wrong-password")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestNewApp_SeedDisabled(t *testing.T) {
	c := testConfig()
	c.SeedUsername = ""

	app, err := NewApp(c)
	require.NoError(t, err)

	_, err = app.userService.Login(context.Background(), "demo", "demo-password")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestNewApp_SeedRejectsEmptyPassword(t *testing.T) {
	c := testConfig()
	c.SeedPassword = ""

	_, err := NewApp(c)
	require.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestRun_ReturnsWhenContextCancelled(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReturnsOnListenError(t *testing.T) {
	c := testConfig()
	c.ListenAddr = "127.0.0.1:99999"
	app, err := NewApp(c)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after listen error")
	}
}

func TestNewApp_DatabaseUnavailable(t *testing.T) {
	c := testConfig()
	c.DatabaseDSN = "host=127.0.0.1 port=notaport"

	_, err := NewApp(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage error")
}
