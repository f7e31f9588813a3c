package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Client is the transport contract towards the backend API.
type Client interface {
	Close() error
	FetchCurrentUser(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	Hello(ctx context.Context, name string) (string, error)
}
