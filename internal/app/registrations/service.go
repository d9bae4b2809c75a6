package registrations

import (
	"context"

	"meetup/internal/store"
)

// Store defines the persistence hooks for the registration ledger.
type Store interface {
	Register(ctx context.Context, token string, eventID int64) (store.Registration, error)
	Unregister(ctx context.Context, token string, eventID int64) error
	IsRegistered(ctx context.Context, token string, eventID int64) (bool, error)
	SpotsLeft(ctx context.Context, eventID int64) (int, error)
}

// Service coordinates registration workflows.
type Service interface {
	Register(ctx context.Context, token string, eventID int64) (store.Registration, error)
	Unregister(ctx context.Context, token string, eventID int64) error
	IsRegistered(ctx context.Context, token string, eventID int64) (bool, error)
	SpotsLeft(ctx context.Context, eventID int64) (int, error)
}

type service struct {
	store Store
}

// New constructs a registrations Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Register(ctx context.Context, token string, eventID int64) (store.Registration, error) {
	if err := ctx.Err(); err != nil {
		return store.Registration{}, err
	}
	return s.store.Register(ctx, token, eventID)
}

func (s *service) Unregister(ctx context.Context, token string, eventID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Unregister(ctx, token, eventID)
}

func (s *service) IsRegistered(ctx context.Context, token string, eventID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.IsRegistered(ctx, token, eventID)
}

func (s *service) SpotsLeft(ctx context.Context, eventID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.SpotsLeft(ctx, eventID)
}
