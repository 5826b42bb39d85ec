package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the ghubbattery history database.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at the given path.
// It creates the parent directory if it does not exist.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)

	// WAL keeps readers (history, doctor) from blocking the watch recorder.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}

	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// OpenInMemory opens an in-memory SQLite database, useful for testing.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for advanced queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
