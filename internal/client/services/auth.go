// Package services contains application services for the client shell.
// This file defines the authentication service: the credential-aware half of
// the auth client. It pairs every transport call with the credential store
// bookkeeping that has to happen around it.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// CredentialStore is the subset of the cookie jar the service writes to.
type CredentialStore interface {
	Set(ctx context.Context, name, value string, expiresAt time.Time)
	Get(ctx context.Context, name string) (string, bool)
	Remove(ctx context.Context, name string)
}

// AuthService defines authentication operations for the session controller.
//
// Contract:
//   - CurrentUser: ask the backend who the stored credential belongs to.
//   - Login/Register: authenticate and persist the credential before returning.
//   - Logout: notify the backend best-effort and always drop the credential.
//   - Greeting: fetch the protected greeting for the home view.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, in models.LoginInput) (*models.User, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Logout(ctx context.Context) error
	Greeting(ctx context.Context, name string) (string, error)
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  CredentialStore
	logger logging.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and
// credential store. A nil logger disables logging.
func NewAuthService(c client.Client, store CredentialStore, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &authService{client: c, store: store, logger: logger, now: time.Now}
}

// CurrentUser returns the backend's view of the session. An anonymous
// session is client.ErrUnauthenticated and is logged at debug level only.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	u, err := a.client.FetchCurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			a.logger.Debug(ctx, "no active session")
		} else {
			a.logger.Warn(ctx, "current user fetch failed", "error", err)
		}
		return nil, err
	}
	return u, nil
}

// Login authenticates and stores the issued token. On failure the store is
// left untouched.
func (a *authService) Login(ctx context.Context, in models.LoginInput) (*models.User, error) {
	res, err := a.client.Login(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	a.persist(ctx, res)
	a.logger.Info(ctx, "logged in", "user", res.User.Username)
	return &res.User, nil
}

// Register creates the account and signs it in the same way Login does.
func (a *authService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	res, err := a.client.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	a.persist(ctx, res)
	a.logger.Info(ctx, "registered", "user", res.User.Username)
	return &res.User, nil
}

func (a *authService) persist(ctx context.Context, res *models.AuthResult) {
	a.store.Set(ctx, common.AccessTokenCookieName, res.Token, a.now().Add(common.AccessTokenTTL))
}

// Logout tells the backend the session is over and removes the credential
// whatever the backend answered. It never fails.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}
	a.store.Remove(ctx, common.AccessTokenCookieName)
	return nil
}

func (a *authService) Greeting(ctx context.Context, name string) (string, error) {
	return a.client.Hello(ctx, name)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
