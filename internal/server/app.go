// Package server initializes and runs the development backend: it opens the
// user store, seeds it, serves the HTTP API and shuts down on SIGINT,
// SIGTERM or SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/api"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repos       repomanager.RepositoryManager
	userService *users.Service
	server      *api.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, "json")

	repos, err := repomanager.New(context.Background(), c)
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}

	us := users.NewService(repos.Users(), c)

	app := &App{
		config:      c,
		logger:      logger,
		repos:       repos,
		userService: us,
		server:      api.NewServer(c.ListenAddr, logger, us, c.AccessTokenValidityDuration),
	}

	if err := app.seedUser(context.Background()); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("seed error: %w", err)
	}

	return app, nil
}

// seedUser creates the configured development account, if any.
func (app *App) seedUser(ctx context.Context) error {
	if app.config.SeedUsername == "" {
		return nil
	}
	_, err := app.userService.Create(ctx, app.config.SeedUsername, app.config.SeedPassword, users.User{})
	if err != nil && !errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}
	app.logger.Info(ctx, "Seed user ready", "username", app.config.SeedUsername)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
}
