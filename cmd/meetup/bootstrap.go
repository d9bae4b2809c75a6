package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"meetup/internal/store"
)

func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	if err := ensureDemoAccount(ctx, dataStore); err != nil {
		return err
	}
	if err := ensureDemoEvents(ctx, db, dataStore); err != nil {
		return err
	}
	return nil
}

func ensureDemoAccount(ctx context.Context, dataStore *store.Store) error {
	_, err := dataStore.CreateAccount(ctx, "demo@meetup.se", "demo123")
	if err != nil && !errors.Is(err, store.ErrAccountExists) {
		return fmt.Errorf("bootstrap demo account: %w", err)
	}
	return nil
}

func ensureDemoEvents(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	exists, err := tableExists(ctx, db, "events")
	if err != nil {
		return fmt.Errorf("check events table: %w", err)
	}
	if !exists {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM events
	`).Scan(&count); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	nextWeek := func(days int, hour int) time.Time {
		day := time.Now().AddDate(0, 0, days)
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.Local)
	}

	seeds := []store.Event{
		{
			Title:       "React hooks på djupet",
			Description: "En kväll om avancerade hooks-mönster och när man ska undvika dem.",
			Location:    "Tech Hub, Drottninggatan 12",
			City:        "Stockholm",
			Category:    "Frontend",
			Host:        "Stockholm JS",
			ScheduledAt: nextWeek(7, 18),
			Capacity:    40,
		},
		{
			Title:       "Designsystem i praktiken",
			Description: "Hur man bygger och underhåller ett designsystem som teamen faktiskt använder.",
			Location:    "Designstudion, Avenyn 3",
			City:        "Göteborg",
			Category:    "Design",
			Host:        "UX Göteborg",
			ScheduledAt: nextWeek(10, 17),
			Capacity:    25,
		},
		{
			Title:       "Go för backendutvecklare",
			Description: "Introduktion till Go med fokus på API-bygge och samtidiga program.",
			Location:    "Kontorshotellet, Storgatan 8",
			City:        "Malmö",
			Category:    "Backend",
			Host:        "Malmö Gophers",
			ScheduledAt: nextWeek(14, 18),
			Capacity:    30,
		},
		{
			Title:       "Tillgänglighet på webben",
			Description: "Praktiska tekniker för att göra webbappar användbara för alla.",
			Location:    "Biblioteket, Sveavägen 73",
			City:        "Stockholm",
			Category:    "Frontend",
			Host:        "A11y Sverige",
			ScheduledAt: nextWeek(21, 17),
			Capacity:    50,
		},
		{
			Title:       "Produktdesign möter data",
			Description: "Hur designbeslut kan grundas i användardata utan att tappa hantverket.",
			Location:    "Järntorget 5",
			City:        "Göteborg",
			Category:    "Design",
			Host:        "Produktklubben",
			ScheduledAt: nextWeek(28, 18),
			Capacity:    35,
		},
	}

	for _, seed := range seeds {
		if _, err := dataStore.CreateEvent(ctx, seed); err != nil {
			return fmt.Errorf("insert demo event %q: %w", seed.Title, err)
		}
	}

	log.Info().Int("events", len(seeds)).Msg("seeded demo catalog")
	return nil
}

type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func tableExists(ctx context.Context, q queryRower, table string) (bool, error) {
	var name sql.NullString
	if err := q.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
