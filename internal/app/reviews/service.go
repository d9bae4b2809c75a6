package reviews

import (
	"context"

	"meetup/internal/store"
)

// Store defines the persistence hooks for review workflows.
type Store interface {
	SubmitReview(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error)
	ReviewsByEvent(ctx context.Context, eventID int64) ([]store.Review, error)
	AverageRating(ctx context.Context, eventID int64) (*float64, error)
}

// Service coordinates review submission and aggregation.
type Service interface {
	Submit(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error)
	ListByEvent(ctx context.Context, eventID int64) ([]store.Review, error)
	Average(ctx context.Context, eventID int64) (*float64, error)
}

type service struct {
	store Store
}

// New constructs a reviews Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Submit(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error) {
	if err := ctx.Err(); err != nil {
		return store.Review{}, err
	}
	return s.store.SubmitReview(ctx, eventID, author, rating, comment)
}

func (s *service) ListByEvent(ctx context.Context, eventID int64) ([]store.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ReviewsByEvent(ctx, eventID)
}

func (s *service) Average(ctx context.Context, eventID int64) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.AverageRating(ctx, eventID)
}
