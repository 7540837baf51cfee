package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLite keeps alerts and bot metrics in a single sqlite file.
type SQLite struct {
	db *sql.DB
}

func Open(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite allows one writer; a single connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	createTableQuery := `
	CREATE TABLE IF NOT EXISTS alerts (
		chat_id INTEGER NOT NULL,
		alert_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		target TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (chat_id, alert_id)
	);`
	if _, err = db.Exec(createTableQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT NOT NULL DEFAULT '',
		label_value TEXT NOT NULL DEFAULT '',
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	if _, err = db.Exec(createMetricsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metrics table: %w", err)
	}

	log.Debugf("Database %s initialized successfully.", dbPath)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
