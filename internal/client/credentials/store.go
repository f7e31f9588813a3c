// Package credentials is the client's credential store: a persisted cookie
// jar holding the opaque access token issued at login.
//
// The store never inspects token contents. A cookie whose expiry has passed
// is reported as absent even if its row has not been purged yet. Storage
// failures are logged and swallowed; the next authority check against the
// backend re-derives the session state anyway.
package credentials

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Clock is an injectable time source.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store persists cookies scoped by a single path.
type Store struct {
	db     *sql.DB
	path   string
	clock  Clock
	logger logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry checks.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithPath sets the cookie path scope. Default is "/".
func WithPath(path string) Option {
	return func(s *Store) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets the logger used to report swallowed storage failures.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store over an already migrated database.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		path:   "/",
		clock:  realClock{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under name until expiresAt, replacing any previous value.
// Expired cookies are purged in the same transaction.
func (s *Store) Set(ctx context.Context, name, value string, expiresAt time.Time) {
	now := s.clock.Now()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := cookies.NewSQLiteRepository(tx)
		if _, err := repo.DeleteExpired(ctx, now); err != nil {
			return err
		}
		return repo.Set(ctx, cookies.Cookie{
			Name:      name,
			Path:      s.path,
			Value:     value,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		})
	})
	if err != nil {
		s.logger.Warn(ctx, "cookie write failed", "name", name, "error", err)
	}
}

// Get returns the value stored under name. Missing, unreadable and expired
// cookies are all reported as absent.
func (s *Store) Get(ctx context.Context, name string) (string, bool) {
	cred, ok := s.Credential(ctx, name)
	if !ok {
		return "", false
	}
	return cred.Token, true
}

// Credential returns the cookie stored under name together with its expiry.
// It reports false under the same conditions as Get.
func (s *Store) Credential(ctx context.Context, name string) (models.Credential, bool) {
	c, err := cookies.NewSQLiteRepository(s.db).Get(ctx, name, s.path)
	if err != nil {
		s.logger.Warn(ctx, "cookie read failed", "name", name, "error", err)
		return models.Credential{}, false
	}
	if c == nil {
		return models.Credential{}, false
	}
	cred := models.Credential{Token: c.Value, ExpiresAt: c.ExpiresAt}
	if cred.Expired(s.clock.Now()) {
		return models.Credential{}, false
	}
	return cred, true
}

// Remove deletes the cookie stored under name. Removing an absent cookie is a no-op.
func (s *Store) Remove(ctx context.Context, name string) {
	if err := cookies.NewSQLiteRepository(s.db).Delete(ctx, name, s.path); err != nil {
		s.logger.Warn(ctx, "cookie delete failed", "name", name, "error", err)
	}
}

// Decorate attaches the current access token to an outbound request, both as
// the access_token cookie and as a bearer Authorization header. Requests go
// out undecorated when no valid token is stored.
func (s *Store) Decorate(req *http.Request) {
	token, ok := s.Get(req.Context(), common.AccessTokenCookieName)
	if !ok {
		return
	}
	req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
	req.Header.Set("Authorization", common.BearerTokenType+" "+token)
}
