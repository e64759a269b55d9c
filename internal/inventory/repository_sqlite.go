package inventory

import (
	"context"
	"database/sql"
	"fmt"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kord_kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLKV stores blobs in a SQLite kord_kv table.
type SQLKV struct {
	db *sql.DB
}

// NewSQLKV ensures the table exists and returns the adapter.
func NewSQLKV(ctx context.Context, db *sql.DB) (*SQLKV, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("inventory: sqlite schema: %w", err)
	}
	return &SQLKV{db: db}, nil
}

// Load reads the requested keys one by one.
func (s *SQLKV) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		var value string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM kord_kv WHERE key = ?`, k).Scan(&value)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inventory: sqlite load %s: %w", k, err)
		}
		out[k] = []byte(value)
	}
	return out, nil
}

// Save upserts every blob in one transaction.
func (s *SQLKV) Save(ctx context.Context, blobs map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("inventory: sqlite begin: %w", err)
	}
	defer tx.Rollback()

	for k, v := range blobs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kord_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, string(v),
		)
		if err != nil {
			return fmt.Errorf("inventory: sqlite save %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("inventory: sqlite commit: %w", err)
	}
	return nil
}
