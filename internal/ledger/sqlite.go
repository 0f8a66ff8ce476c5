package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore keeps one row per (ledger key, phrase) in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("ledger: create data dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: pragma %q: %w", p, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS phrase_usage (
			ledger_key TEXT NOT NULL,
			phrase     TEXT NOT NULL,
			PRIMARY KEY (ledger_key, phrase)
		);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: migration: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ledger_key, phrase FROM phrase_usage ORDER BY ledger_key, phrase`)
	if err != nil {
		return nil, fmt.Errorf("ledger: query usage: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var key, phrase string
		if err := rows.Scan(&key, &phrase); err != nil {
			return nil, fmt.Errorf("ledger: scan usage: %w", err)
		}
		snap[key] = append(snap[key], phrase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterate usage: %w", err)
	}
	return snap, nil
}

// Save replaces the stored ledger with snap in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM phrase_usage`); err != nil {
		return fmt.Errorf("ledger: clear usage: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO phrase_usage (ledger_key, phrase) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("ledger: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range snap.Keys() {
		for _, phrase := range snap[key] {
			if _, err := stmt.ExecContext(ctx, key, phrase); err != nil {
				return fmt.Errorf("ledger: insert %s: %w", key, err)
			}
		}
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
