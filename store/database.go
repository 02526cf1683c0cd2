// Package store provides visitor persistence over SQLite or Turso.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	defaults "github.com/rarecask/leadtrack-go/config"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
)

// Database wraps the database connection.
type Database struct {
	Conn     *sql.DB
	UseTurso bool
}

// NewDatabase opens the visitor database. Turso is tried first when
// credentials are configured; otherwise a local SQLite file is used.
func NewDatabase() (*Database, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if defaults.TursoDatabase != "" && defaults.TursoToken != "" {
		connStr := defaults.TursoDatabase + "?authToken=" + defaults.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useTurso = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	// Fallback to SQLite if Turso failed or not configured
	if conn == nil {
		dbDir := filepath.Dir(defaults.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", defaults.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		useTurso = false
	}

	conn.SetMaxOpenConns(defaults.DBMaxOpenConns)
	conn.SetMaxIdleConns(defaults.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(defaults.DBConnMaxLifetimeMinutes) * time.Minute)

	db := &Database{Conn: conn, UseTurso: useTurso}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema creates the visitors table. The aggregate is stored as a JSON
// document; status, scores, identity flag, and last_visit are extracted into
// columns so administrative filters don't have to unmarshal every row.
func (db *Database) ensureSchema() error {
	schema := `CREATE TABLE IF NOT EXISTS visitors (
		visitor_id       TEXT PRIMARY KEY,
		status           TEXT NOT NULL DEFAULT 'anonymous',
		email            TEXT NOT NULL DEFAULT '',
		lead_score       INTEGER NOT NULL DEFAULT 0,
		engagement_score INTEGER NOT NULL DEFAULT 0,
		has_identity     INTEGER NOT NULL DEFAULT 0,
		last_visit       TIMESTAMP NOT NULL,
		created_at       TIMESTAMP NOT NULL,
		doc              TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visitors_last_visit ON visitors(last_visit);
	CREATE INDEX IF NOT EXISTS idx_visitors_lead_score ON visitors(lead_score);
	CREATE INDEX IF NOT EXISTS idx_visitors_status ON visitors(status);`

	if _, err := db.Conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create visitors schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.Conn != nil {
		return db.Conn.Close()
	}
	return nil
}

// GetConnectionInfo returns a string describing the database connection
func (db *Database) GetConnectionInfo() string {
	if db.UseTurso {
		return "Turso"
	}
	return "SQLite"
}
