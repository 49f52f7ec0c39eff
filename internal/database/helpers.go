package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/thenoetrevino/circles/internal/events"
	"github.com/thenoetrevino/circles/internal/models"
)

// withTx executes fn within a transaction, rolling back on error
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback transaction: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// sendEvent publishes a board change after commit. Errors are logged, not
// returned (fire-and-forget).
func sendEvent(publisher events.Publisher, boardID string, content []models.Note, updatedAt time.Time) {
	if publisher == nil {
		return
	}
	err := publisher.Publish(events.Event{
		Type:      events.EventBoardUpdated,
		BoardID:   boardID,
		Content:   models.CloneNotes(content),
		UpdatedAt: updatedAt,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Printf("failed to send event for board %s: %v", boardID, err)
	}
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func encodeNotes(notes []models.Note) (string, error) {
	data, err := json.Marshal(models.NormalizeNotes(notes))
	if err != nil {
		return "", fmt.Errorf("failed to encode board content: %w", err)
	}
	return string(data), nil
}

func decodeNotes(raw string) ([]models.Note, error) {
	var notes []models.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("failed to decode board content: %w", err)
	}
	return models.NormalizeNotes(notes), nil
}
