// Package profile derives the "my registrations" view: the user's registered
// events split into upcoming and past relative to a reference time.
package profile

import (
	"context"
	"sort"
	"time"

	"meetup/internal/store"
)

// Store captures the persistence needs for profile workflows.
type Store interface {
	RegisteredEventsByToken(ctx context.Context, token string) ([]store.Event, error)
}

// Service derives per-user registration views.
type Service interface {
	Registrations(ctx context.Context, token string, now time.Time) (upcoming, past []store.Event, err error)
}

type service struct {
	store Store
}

// New constructs a profile Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Registrations(ctx context.Context, token string, now time.Time) ([]store.Event, []store.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	events, err := s.store.RegisteredEventsByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	upcoming, past := Split(events, now)
	return upcoming, past, nil
}

// Split partitions events by schedule time. An event scheduled exactly at now
// counts as upcoming. Upcoming events are sorted soonest first, past events
// most recent first.
func Split(events []store.Event, now time.Time) (upcoming, past []store.Event) {
	for _, event := range events {
		if event.ScheduledAt.Before(now) {
			past = append(past, event)
		} else {
			upcoming = append(upcoming, event)
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledAt.Before(upcoming[j].ScheduledAt)
	})
	sort.Slice(past, func(i, j int) bool {
		return past[i].ScheduledAt.After(past[j].ScheduledAt)
	})

	return upcoming, past
}
