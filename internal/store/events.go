package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEventNotFound signals a missing event record.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidEvent indicates validation failure for event data.
	ErrInvalidEvent = errors.New("invalid event")
)

// Event models a meetup in the catalog. Events are immutable after creation;
// only the registration counter changes, and only through the ledger.
type Event struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	City            string    `json:"city"`
	Category        string    `json:"category"`
	Host            string    `json:"host"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	Capacity        int       `json:"capacity"`
	RegisteredCount int       `json:"registeredCount"`
}

// SpotsLeft returns the remaining capacity, never negative.
func (e Event) SpotsLeft() int {
	if left := e.Capacity - e.RegisteredCount; left > 0 {
		return left
	}
	return 0
}

// EventFilter constrains the results returned by ListEvents. A zero field
// imposes no constraint; all set fields must match (logical AND).
type EventFilter struct {
	Query    string
	City     string
	Category string
	From     *time.Time
	To       *time.Time
}

const eventColumns = `id, title, description, location, city, category, host, scheduled_at, capacity, registered_count`

// CreateEvent inserts a new event into the catalog.
func (s *Store) CreateEvent(ctx context.Context, event Event) (Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	event.Location = strings.TrimSpace(event.Location)
	event.City = strings.TrimSpace(event.City)
	event.Category = strings.TrimSpace(event.Category)
	event.Host = strings.TrimSpace(event.Host)

	if err := validateEvent(event); err != nil {
		return Event{}, err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, location, city, category, host, scheduled_at, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, event.Title, event.Description, event.Location, event.City, event.Category,
		event.Host, event.ScheduledAt, event.Capacity).Scan(&event.ID)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}

	return event, nil
}

// ListEvents returns events matching the provided filter in catalog order.
func (s *Store) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
	`

	var (
		clauses []string
		args    []any
	)

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("(title || ' ' || description || ' ' || location || ' ' || host) ILIKE $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		clauses = append(clauses, fmt.Sprintf("city = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, startOfDay(*filter.From))
		clauses = append(clauses, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if filter.To != nil {
		// Inclusive through the end of the To day.
		args = append(args, startOfDay(*filter.To).AddDate(0, 0, 1))
		clauses = append(clauses, fmt.Sprintf("scheduled_at < $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
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
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// EventByID returns a single event or ErrEventNotFound.
func (s *Store) EventByID(ctx context.Context, id int64) (Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE id = $1
	`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		return Event{}, err
	}

	return event, nil
}

// Cities returns the distinct set of cities present in the catalog, sorted.
func (s *Store) Cities(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `
		SELECT DISTINCT city
		FROM events
		ORDER BY city ASC
	`)
}

// Categories returns the distinct set of categories present in the catalog, sorted.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return s.distinctColumn(ctx, `
		SELECT DISTINCT category
		FROM events
		ORDER BY category ASC
	`)
}

func (s *Store) distinctColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select facet values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan facet value: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facet values: %w", err)
	}

	return values, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.City, &e.Category,
		&e.Host, &e.ScheduledAt, &e.Capacity, &e.RegisteredCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

func validateEvent(event Event) error {
	switch {
	case event.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case event.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidEvent)
	case event.City == "":
		return fmt.Errorf("%w: city is required", ErrInvalidEvent)
	case event.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidEvent)
	case event.Host == "":
		return fmt.Errorf("%w: host is required", ErrInvalidEvent)
	case event.ScheduledAt.IsZero():
		return fmt.Errorf("%w: schedule time is required", ErrInvalidEvent)
	case event.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidEvent)
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
