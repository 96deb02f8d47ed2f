package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

// RecentEvents returns up to limit events, newest first.
func RecentEvents(db *sql.DB, limit int) ([]model.Event, error) {
	rows, err := db.Query(`SELECT kind, sleep_seconds, occurred_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			kind       string
			sleepSecs  int64
			occurredAt string
		)
		if err := rows.Scan(&kind, &sleepSecs, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		events = append(events, model.Event{
			Kind:          model.EventKind(kind),
			SleepDuration: time.Duration(sleepSecs) * time.Second,
			OccurredAt:    at,
		})
	}
	return events, rows.Err()
}

func CountEvents(db *sql.DB, kind model.EventKind) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", kind, err)
	}
	return n, nil
}
