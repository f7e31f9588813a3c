// Package session owns the "who is logged in" state of the client.
//
// The current user lives in the process-wide query cache under
// CurrentUserKey and the backend's /auth/me answer is the only thing that
// ever fills it. Login, registration and logout change the stored credential
// first and only then invalidate the entry, so a read that follows a
// successful login always observes the new user.
//
// The controller is the only component allowed to invalidate CurrentUserKey.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/querycache"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/validation"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// CurrentUserKey is the cache key of the session entry.
const CurrentUserKey = "current-user"

// Entry is the session cache entry. Value is non-nil iff Status is Resolved.
type Entry = querycache.Entry[*models.User]

// ErrSessionNotConfirmed is returned when the backend accepted a login but
// the follow-up /auth/me check did not confirm it.
var ErrSessionNotConfirmed = errors.New("session not confirmed")

// Controller coordinates the auth service and the session cache entry.
type Controller struct {
	auth   services.AuthService
	cache  *querycache.Cache[*models.User]
	logger logging.Logger
}

// NewController binds a controller to an auth service and a cache.
func NewController(auth services.AuthService, cache *querycache.Cache[*models.User], logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{auth: auth, cache: cache, logger: logger}
}

// fetch is the fetcher of the session entry. Any failure, including an
// anonymous session and an unreachable backend, becomes a Rejected entry.
func (c *Controller) fetch(ctx context.Context) (*models.User, error) {
	u, err := c.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, client.ErrUnauthenticated
	}
	return u, nil
}

// CurrentUser returns the session entry, starting a fetch when none is
// fresh. It never blocks.
func (c *Controller) CurrentUser() Entry {
	return c.cache.Read(CurrentUserKey, c.fetch)
}

// AwaitCurrentUser blocks until the session entry settles.
func (c *Controller) AwaitCurrentUser(ctx context.Context) (Entry, error) {
	return c.cache.Await(ctx, CurrentUserKey, c.fetch)
}

// Subscribe registers l for every transition of the session entry.
func (c *Controller) Subscribe(l querycache.Listener[*models.User]) (unsubscribe func()) {
	return c.cache.Subscribe(CurrentUserKey, l)
}

// Login validates in, authenticates and returns the user the backend now
// reports. The credential is stored before the session entry is
// invalidated. A rejected login leaves the cache untouched.
func (c *Controller) Login(ctx context.Context, in models.LoginInput) (*models.User, error) {
	if err := validation.ValidateLogin(in); err != nil {
		return nil, err
	}
	if _, err := c.auth.Login(ctx, in); err != nil {
		return nil, err
	}
	return c.refresh(ctx)
}

// Register validates in, creates the account and signs it in like Login.
func (c *Controller) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if err := validation.ValidateRegister(in); err != nil {
		return nil, err
	}
	if _, err := c.auth.Register(ctx, in); err != nil {
		return nil, err
	}
	return c.refresh(ctx)
}

// Logout ends the session. It always succeeds locally: the credential is
// gone and the session entry is cleared even if the backend was unreachable.
func (c *Controller) Logout(ctx context.Context) error {
	_ = c.auth.Logout(ctx)
	c.cache.Invalidate(CurrentUserKey, querycache.InvalidateOptions{Clear: true})
	c.logger.Info(ctx, "logged out")
	return nil
}

// Greeting fetches the protected greeting for name.
func (c *Controller) Greeting(ctx context.Context, name string) (string, error) {
	return c.auth.Greeting(ctx, name)
}

func (c *Controller) refresh(ctx context.Context) (*models.User, error) {
	c.cache.Invalidate(CurrentUserKey, querycache.InvalidateOptions{Clear: true})

	e, err := c.cache.Await(ctx, CurrentUserKey, c.fetch)
	if err != nil {
		return nil, fmt.Errorf("await session: %w", err)
	}
	if e.Status != querycache.Resolved {
		return nil, fmt.Errorf("%w: %w", ErrSessionNotConfirmed, e.Err)
	}
	return e.Value, nil
}

// IsAnonymous reports whether e denies access. Unsettled entries report false.
func IsAnonymous(e Entry) bool {
	return e.Status == querycache.Rejected || (e.Status == querycache.Resolved && e.Value == nil)
}

// IsAuthenticated reports whether e grants access.
func IsAuthenticated(e Entry) bool {
	return e.Status == querycache.Resolved && e.Value != nil
}
