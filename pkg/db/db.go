package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// Enforce single connection to avoid SQLITE_BUSY errors during concurrent writes
	db.SetMaxOpenConns(1)

	d := &DB{db}
	if err := d.setup(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// setup checks the connection, applies pragmas and migrates the schema.
func (d *DB) setup() error {
	if err := d.Ping(); err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}

	// Enable WAL mode for better concurrency and set busy timeout
	pragmas := []struct{ query, what string }{
		{"PRAGMA journal_mode=WAL;", "enable WAL mode"},
		{"PRAGMA busy_timeout=30000;", "set busy timeout"},
		{"PRAGMA foreign_keys=ON;", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := d.Exec(p.query); err != nil {
			return fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	if err := d.migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS language (
			code TEXT PRIMARY KEY,
			name TEXT,
			native_name TEXT,
			total INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS language_range (
			code TEXT NOT NULL REFERENCES language(code) ON DELETE CASCADE,
			lo INTEGER NOT NULL,
			hi INTEGER NOT NULL,
			PRIMARY KEY (code, lo)
		);`,
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	return nil
}
