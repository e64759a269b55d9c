package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kord-engine/kord/internal/platform/db"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS kord_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresKV stores blobs in the kord_kv table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV ensures the table exists and returns the adapter.
func NewPostgresKV(ctx context.Context, pool *pgxpool.Pool) (*PostgresKV, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("inventory: postgres schema: %w", err)
	}
	return &PostgresKV{pool: pool}, nil
}

// Load selects the requested keys.
func (p *PostgresKV) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	rows, err := p.pool.Query(ctx, `SELECT key, value FROM kord_kv WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("inventory: postgres load: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("inventory: postgres scan: %w", err)
		}
		out[key] = []byte(value)
	}
	return out, rows.Err()
}

// Save upserts every blob in one transaction.
func (p *PostgresKV) Save(ctx context.Context, blobs map[string][]byte) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for k, v := range blobs {
			batch.Queue(`INSERT INTO kord_kv (key, value, updated_at) VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, k, string(v))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inventory: postgres save: %w", err)
		}
		return nil
	})
}
