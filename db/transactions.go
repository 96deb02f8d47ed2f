package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thatsimonsguy/fireplace-controller/internal/model"
)

// StartTransaction starts a new database transaction.
func StartTransaction(db *sql.DB) (*sql.Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// CommitTransaction commits the given transaction.
func CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the given transaction.
func RollbackTransaction(tx *sql.Tx) {
	tx.Rollback()
}

func InsertEventWithTx(tx *sql.Tx, e model.Event) error {
	_, err := tx.Exec(`INSERT INTO events (kind, sleep_seconds, occurred_at) VALUES (?, ?, ?)`,
		string(e.Kind), int64(e.SleepDuration/time.Second), e.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert %s event: %w", e.Kind, err)
	}
	return nil
}

// InsertEvents writes a batch of events in one transaction.
func InsertEvents(db *sql.DB, events []model.Event) error {
	tx, err := StartTransaction(db)
	if err != nil {
		return err
	}
	for _, e := range events {
		if err := InsertEventWithTx(tx, e); err != nil {
			RollbackTransaction(tx)
			return err
		}
	}
	return CommitTransaction(tx)
}

func DeleteEventsBefore(db *sql.DB, before time.Time) (int64, error) {
	tx, err := StartTransaction(db)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`DELETE FROM events WHERE occurred_at < ?`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		RollbackTransaction(tx)
		return 0, fmt.Errorf("delete events: %w", err)
	}
	if err := CommitTransaction(tx); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
