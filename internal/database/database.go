package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database holding chats, channels and alarm rules.
// The alert core only reads from it; rows are written by the registration
// layer and by tests.
type Store struct {
	db *sql.DB
}

// Open connects to the sqlite database at dbPath and creates the schema if
// it does not exist yet.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Database initialized successfully.")
	return s, nil
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS Chat (
			ChatID INTEGER PRIMARY KEY,
			AlarmOption BOOLEAN NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS Channel (
			ChannelID INTEGER PRIMARY KEY,
			ChannelName TEXT NOT NULL,
			ChatID INTEGER NOT NULL,
			AlarmOption BOOLEAN NOT NULL DEFAULT 1,
			FOREIGN KEY (ChatID) REFERENCES Chat(ChatID) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS Alarm (
			AlarmID INTEGER PRIMARY KEY AUTOINCREMENT,
			AlarmType TEXT NOT NULL,
			ChatID INTEGER NOT NULL,
			ExchangeID INTEGER NOT NULL,
			BaseSymbol TEXT NOT NULL,
			QuoteSymbol TEXT NOT NULL,
			AlarmQuantity REAL NOT NULL,
			IsEnabled BOOLEAN NOT NULL DEFAULT 1,
			IsChannel BOOLEAN NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS metrics (
			metric_name TEXT NOT NULL,
			label_key TEXT DEFAULT NULL,
			label_value TEXT DEFAULT NULL,
			metric_value REAL NOT NULL,
			PRIMARY KEY (metric_name, label_key, label_value)
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
