package users

import (
	"context"

	"meetup/internal/store"
)

// Store captures the persistence needs for account workflows.
type Store interface {
	CreateAccount(ctx context.Context, email, password string) (store.Account, error)
	Authenticate(ctx context.Context, email, password string) (string, store.Account, error)
	AccountByToken(ctx context.Context, token string) (store.Account, error)
}

// Service coordinates account signup and login.
type Service interface {
	Signup(ctx context.Context, email, password string) (store.Account, error)
	Login(ctx context.Context, email, password string) (string, store.Account, error)
	Me(ctx context.Context, token string) (store.Account, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, email, password string) (store.Account, error) {
	if err := ctx.Err(); err != nil {
		return store.Account{}, err
	}
	return s.store.CreateAccount(ctx, email, password)
}

func (s *service) Login(ctx context.Context, email, password string) (string, store.Account, error) {
	if err := ctx.Err(); err != nil {
		return "", store.Account{}, err
	}
	return s.store.Authenticate(ctx, email, password)
}

func (s *service) Me(ctx context.Context, token string) (store.Account, error) {
	if err := ctx.Err(); err != nil {
		return store.Account{}, err
	}
	return s.store.AccountByToken(ctx, token)
}
