package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAlreadyRegistered is returned when the user holds a spot for the event.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrEventFull is returned when an event has no remaining capacity.
	ErrEventFull = errors.New("event is fully booked")
	// ErrNotRegistered is returned when unregistering without a registration.
	ErrNotRegistered = errors.New("not registered for this event")
)

// Registration records that a user holds a spot for an event.
type Registration struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"eventId"`
	UserID       int64     `json:"userId"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Register claims a spot for the authenticated user. The event row is locked
// for the duration of the transaction, so the capacity check and the counter
// increment act as one atomic step: two users racing for the last spot can
// never both succeed.
func (s *Store) Register(ctx context.Context, token string, eventID int64) (Registration, error) {
	userID, err := s.userIDForToken(token)
	if err != nil {
		return Registration{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Registration{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity, registered int
	err = tx.QueryRowContext(ctx, `
		SELECT capacity, registered_count
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&capacity, &registered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Registration{}, ErrEventNotFound
		}
		return Registration{}, fmt.Errorf("lock event row: %w", err)
	}

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(&existing)
	if err != nil {
		return Registration{}, fmt.Errorf("check duplicate: %w", err)
	}
	if existing > 0 {
		return Registration{}, ErrAlreadyRegistered
	}

	if registered >= capacity {
		return Registration{}, ErrEventFull
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE events
		SET registered_count = registered_count + 1
		WHERE id = $1
	`, eventID); err != nil {
		return Registration{}, fmt.Errorf("increment registered_count: %w", err)
	}

	reg := Registration{EventID: eventID, UserID: userID}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO registrations (event_id, user_id)
		VALUES ($1, $2)
		RETURNING id, registered_at
	`, eventID, userID).Scan(&reg.ID, &reg.RegisteredAt)
	if err != nil {
		return Registration{}, fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Registration{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return reg, nil
}

// Unregister releases the user's spot for an event. The event row lock keeps
// the counter consistent with the registration rows.
func (s *Store) Unregister(ctx context.Context, token string, eventID int64) error {
	userID, err := s.userIDForToken(token)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM events
		WHERE id = $1
		FOR UPDATE
	`, eventID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotRegistered
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE events
		SET registered_count = GREATEST(registered_count - 1, 0)
		WHERE id = $1
	`, eventID); err != nil {
		return fmt.Errorf("decrement registered_count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return nil
}

// IsRegistered reports whether the user holds a spot for the event.
func (s *Store) IsRegistered(ctx context.Context, token string, eventID int64) (bool, error) {
	userID, err := s.userIDForToken(token)
	if err != nil {
		return false, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}

	return count > 0, nil
}

// SpotsLeft returns the remaining capacity for an event, clamped at zero.
func (s *Store) SpotsLeft(ctx context.Context, eventID int64) (int, error) {
	var left int
	err := s.db.QueryRowContext(ctx, `
		SELECT GREATEST(capacity - registered_count, 0)
		FROM events
		WHERE id = $1
	`, eventID).Scan(&left)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEventNotFound
		}
		return 0, fmt.Errorf("select spots left: %w", err)
	}

	return left, nil
}

// RegisteredEventsByToken lists the events the user is registered for,
// ordered by schedule time ascending.
func (s *Store) RegisteredEventsByToken(ctx context.Context, token string) ([]Event, error) {
	userID, err := s.userIDForToken(token)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.description, e.location, e.city, e.category, e.host, e.scheduled_at, e.capacity, e.registered_count
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.scheduled_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select registered events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registered events: %w", err)
	}

	return events, nil
}
