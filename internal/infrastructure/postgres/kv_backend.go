package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/repository"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// SQLSTATE 53100 disk_full, 54000 program_limit_exceeded.
var quotaCodes = map[string]bool{"53100": true, "54000": true}

// KVBackend guarda cada clave en una fila de kv_store.
type KVBackend struct {
	pool     *pgxpool.Pool
	capacity int
}

var _ repository.KVBackend = (*KVBackend)(nil)

// NewKVBackend crea la tabla si no existe. capacity <= 0 desactiva el límite.
func NewKVBackend(ctx context.Context, pool *pgxpool.Pool, capacity int) (*KVBackend, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: crear kv_store: %w", err)
	}
	return &KVBackend{pool: pool, capacity: capacity}, nil
}

func (b *KVBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres: leer %s: %w", key, err)
	}
	return value, true, nil
}

func (b *KVBackend) Set(ctx context.Context, key, value string) error {
	if b.capacity > 0 && len(value) > b.capacity {
		return domain.ErrQuotaExceeded
	}
	_, err := b.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && quotaCodes[pgErr.Code] {
			return fmt.Errorf("postgres: %w: %s", domain.ErrQuotaExceeded, pgErr.Message)
		}
		return fmt.Errorf("postgres: escribir %s: %w", key, err)
	}
	return nil
}

func (b *KVBackend) Remove(ctx context.Context, key string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("postgres: borrar %s: %w", key, err)
	}
	return nil
}
