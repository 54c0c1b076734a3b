package db

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// Connect opens the SQLite database at dbPath. ":memory:" gives a private in-memory database.
func Connect(dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		pool.SetMaxOpenConns(1)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	slog.Info("Connected to database", "db.path", dbPath)
	return pool, nil
}

// InitializeDB creates the schema if it does not exist yet.
func InitializeDB(DB *sqlx.DB) error {
	if _, err := DB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create users table if it doesn't exist
	userSchema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);`

	if _, err := DB.Exec(userSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	slog.Info("DB connection initialized and schema verified.")
	return nil
}
