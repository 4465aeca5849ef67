// Package storage provides the persistence gateway used by the session
// stores: a narrow key/value save-load-remove-clear contract backed by
// SQLite. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Well-known keys. Each store owns exactly one.
const (
	KeyGame      = "game"
	KeyQuestions = "questions"
	KeyCards     = "cards"
)

// Gateway is the persistence contract the stores depend on. Load returns
// (nil, nil) when the key has never been saved; callers treat that as
// "no prior state".
type Gateway interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error)
	Remove(key string) error
	Clear() error
}

// Store manages the SQLite database connection for session state.
type Store struct {
	db *sql.DB
}

var _ Gateway = (*Store)(nil)

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS session_state (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes the value for a key, replacing any previous value.
func (s *Store) Save(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO session_state (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, data,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save %q: %w", key, err)
	}
	return nil
}

// Load reads the value for a key. A key that was never saved yields
// (nil, nil).
func (s *Store) Load(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT value FROM session_state WHERE key = ?",
		key,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load %q: %w", key, err)
	}
	return data, nil
}

// Remove deletes the value for a key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM session_state WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("storage: cannot remove %q: %w", key, err)
	}
	return nil
}

// Clear deletes all saved state.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM session_state")
	if err != nil {
		return fmt.Errorf("storage: cannot clear state: %w", err)
	}
	return nil
}
