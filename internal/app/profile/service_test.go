package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetup/internal/store"
)

type stubStore struct {
	events []store.Event
	err    error
	token  string
}

func (s *stubStore) RegisteredEventsByToken(_ context.Context, token string) ([]store.Event, error) {
	s.token = token
	return s.events, s.err
}

func eventAt(id int64, scheduledAt time.Time) store.Event {
	return store.Event{ID: id, Title: "Meetup", ScheduledAt: scheduledAt}
}

func TestSplitBoundary(t *testing.T) {
	now := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)

	events := []store.Event{
		eventAt(1, now),                      // exactly now counts as upcoming
		eventAt(2, now.Add(-time.Second)),    // one second ago is past
		eventAt(3, now.Add(time.Second)),     // upcoming
		eventAt(4, now.Add(-48*time.Hour)),   // past
		eventAt(5, now.Add(72*time.Hour)),    // upcoming
	}

	upcoming, past := Split(events, now)

	if len(upcoming) != 3 || len(past) != 2 {
		t.Fatalf("expected 3 upcoming and 2 past, got %d and %d", len(upcoming), len(past))
	}

	// Upcoming soonest first.
	if upcoming[0].ID != 1 || upcoming[1].ID != 3 || upcoming[2].ID != 5 {
		t.Fatalf("unexpected upcoming order: %#v", upcoming)
	}
	// Past most recent first.
	if past[0].ID != 2 || past[1].ID != 4 {
		t.Fatalf("unexpected past order: %#v", past)
	}
}

func TestSplitEmpty(t *testing.T) {
	upcoming, past := Split(nil, time.Now())
	if len(upcoming) != 0 || len(past) != 0 {
		t.Fatalf("expected empty partitions, got %#v and %#v", upcoming, past)
	}
}

func TestRegistrationsDelegates(t *testing.T) {
	now := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	st := &stubStore{events: []store.Event{
		eventAt(1, now.Add(time.Hour)),
		eventAt(2, now.Add(-time.Hour)),
	}}

	svc := New(st)

	upcoming, past, err := svc.Registrations(context.Background(), "session-token", now)
	if err != nil {
		t.Fatalf("Registrations: %v", err)
	}
	if st.token != "session-token" {
		t.Fatalf("expected token forwarded, got %q", st.token)
	}
	if len(upcoming) != 1 || upcoming[0].ID != 1 {
		t.Fatalf("unexpected upcoming: %#v", upcoming)
	}
	if len(past) != 1 || past[0].ID != 2 {
		t.Fatalf("unexpected past: %#v", past)
	}
}

func TestRegistrationsStoreError(t *testing.T) {
	wantErr := errors.New("boom")
	svc := New(&stubStore{err: wantErr})

	_, _, err := svc.Registrations(context.Background(), "session-token", time.Now())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRegistrationsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(&stubStore{})

	_, _, err := svc.Registrations(ctx, "session-token", time.Now())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
