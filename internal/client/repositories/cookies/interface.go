package cookies

import (
	"context"
	"time"
)

// Cookie is one persisted name/value pair scoped by path.
type Cookie struct {
	Name      string
	Path      string
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Get(ctx context.Context, name, path string) (*Cookie, error)
	Set(ctx context.Context, c Cookie) error
	Delete(ctx context.Context, name, path string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context) ([]Cookie, error)
}
