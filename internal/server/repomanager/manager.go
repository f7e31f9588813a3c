// Package repomanager selects the backend's user store: PostgreSQL when a
// DSN is configured, process memory otherwise.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Close() error
}

// New returns the manager for c.DatabaseDSN. The PostgreSQL schema is
// migrated before New returns.
func New(ctx context.Context, c *config.Config) (RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		return NewInMemoryRepositoryManager(), nil
	}
	m, err := NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return m, nil
}
