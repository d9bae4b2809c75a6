package events

import (
	"context"

	"meetup/internal/store"
)

// Store captures the persistence needs for catalog workflows.
type Store interface {
	CreateEvent(ctx context.Context, event store.Event) (store.Event, error)
	ListEvents(ctx context.Context, filter store.EventFilter) ([]store.Event, error)
	EventByID(ctx context.Context, id int64) (store.Event, error)
	Cities(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service coordinates catalog browsing and filtering.
type Service interface {
	Create(ctx context.Context, event store.Event) (store.Event, error)
	List(ctx context.Context, filter store.EventFilter) ([]store.Event, error)
	Get(ctx context.Context, id int64) (store.Event, error)
	Facets(ctx context.Context) (cities, categories []string, err error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, event store.Event) (store.Event, error) {
	if err := ctx.Err(); err != nil {
		return store.Event{}, err
	}
	return s.store.CreateEvent(ctx, event)
}

func (s *service) List(ctx context.Context, filter store.EventFilter) ([]store.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (store.Event, error) {
	if err := ctx.Err(); err != nil {
		return store.Event{}, err
	}
	return s.store.EventByID(ctx, id)
}

func (s *service) Facets(ctx context.Context) ([]string, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cities, err := s.store.Cities(ctx)
	if err != nil {
		return nil, nil, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cities, categories, nil
}
