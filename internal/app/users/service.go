package users

import (
	"context"

	"waymark/shared/go/models"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
	DeleteSession(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

// Service exposes account workflows in an extensible manner.
type Service interface {
	Signup(ctx context.Context, username, password string) error
	Authenticate(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*models.User, error)
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Authenticate(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.store.Authenticate(ctx, username, password)
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, token)
}

func (s *service) Profile(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UserByToken(ctx, token)
}
