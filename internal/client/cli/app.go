package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/credentials"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/querycache"
	"github.com/dmitrijs2005/gophauth/internal/client/router"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// App is the client shell: one session cache, one cookie jar and one
// navigation history, driven by the REPL.
type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService services.AuthService
	cache       *querycache.Cache[*models.User]
	session     *session.Controller
	router      *router.Router
	reader      *bufio.Reader
	out         io.Writer
	ctx         context.Context
}

// NewApp wires the shell against the backend named in c.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	dbPath, err := filex.EnsureFileDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", dbPath, "error", err)
		return nil, err
	}

	store := credentials.NewStore(db, credentials.WithLogger(logger))

	apiClient, err := client.NewHTTPClient(client.HTTPClientConfig{
		BaseURL:   c.BackendURL,
		Timeout:   c.RequestTimeout,
		Decorator: store,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, store, logger)

	a := newApp(c, logger, as, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, as services.AuthService, in io.Reader, out io.Writer) *App {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := querycache.New[*models.User](querycache.Options{StaleTime: c.StaleTime, Logger: logger})

	a := &App{
		config:      c,
		logger:      logger,
		authService: as,
		cache:       cache,
		session:     session.NewController(as, cache, logger),
		reader:      bufio.NewReader(in),
		out:         out,
		ctx:         context.Background(),
	}
	a.router = a.newRouter()
	return a
}

func (a *App) newRouter() *router.Router {
	r := router.New(router.NewHistory(router.Home), func() router.View {
		return &notFoundView{app: a}
	})
	r.Handle(router.Home, router.Protect(a.session,
		func() router.View { return &homeView{app: a} },
		router.WithLoading(a.showLoading),
	))
	r.Handle(router.Login, func() router.View { return newLoginView(a) })
	r.Handle(router.Register, func() router.View { return newRegisterView(a) })
	return r
}

// Run mounts the start page and serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	a.ctx = ctx
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to gophauth (type 'help' for commands)")
	a.router.Start()
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close unmounts the current view and releases the cache, the transport
// and the database.
func (a *App) Close(ctx context.Context) {
	a.router.Close()
	a.cache.Close()
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "closing database", "error", err)
		}
	}
}

func (a *App) getStatus() string {
	s := a.router.Location().String()
	if e := a.session.CurrentUser(); session.IsAuthenticated(e) {
		s = e.Value.Username + " " + s
	}
	return s
}

func (a *App) showLoading(loc router.Location) {
	fmt.Fprintf(a.out, "Checking session for %s ...\n", loc.Path)
}

// requestContext bounds a view's network call by the configured timeout.
func (a *App) requestContext() (context.Context, context.CancelFunc) {
	return a.requestContextFrom(a.ctx)
}

func (a *App) requestContextFrom(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02")
}
