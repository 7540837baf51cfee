package database

import (
	"coindcx-alert-bot/internal/types"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Load reads every stored alert grouped by chat, in creation order.
func (s *SQLite) Load() (map[int64][]types.Alert, error) {
	query := `SELECT chat_id, alert_id, symbol, direction, target, created_at FROM alerts ORDER BY chat_id, alert_id;`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make(map[int64][]types.Alert)
	for rows.Next() {
		var (
			alert                        types.Alert
			direction, target, createdAt string
		)
		if err := rows.Scan(&alert.Owner, &alert.ID, &alert.Symbol, &direction, &target, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := alert.Direction.UnmarshalText([]byte(direction)); err != nil {
			return nil, fmt.Errorf("alert %d/%d: %w", alert.Owner, alert.ID, err)
		}
		if alert.Target, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("alert %d/%d: bad target %q: %w", alert.Owner, alert.ID, target, err)
		}
		if alert.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("alert %d/%d: bad created_at %q: %w", alert.Owner, alert.ID, createdAt, err)
		}
		alerts[alert.Owner] = append(alerts[alert.Owner], alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}

	return alerts, nil
}

// SaveOwner replaces the stored alerts of one chat.
func (s *SQLite) SaveOwner(chatID int64, alerts []types.Alert) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM alerts WHERE chat_id = ?;`, chatID); err != nil {
		return fmt.Errorf("failed to delete alerts for chat ID %d: %w", chatID, err)
	}

	query := `
	INSERT INTO alerts (chat_id, alert_id, symbol, direction, target, created_at)
	VALUES (?, ?, ?, ?, ?, ?);`
	for _, a := range alerts {
		_, err := tx.Exec(query, chatID, a.ID, a.Symbol, a.Direction.String(), a.Target.String(), a.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alerts for chat ID %d: %w", chatID, err)
	}

	log.Debugf("Saved %d alerts for ChatID: %d", len(alerts), chatID)
	return nil
}
