// Package backend abre el almacenamiento clave/valor elegido en la configuración.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/devis-api/internal/domain/repository"
	"github.com/jhoicas/devis-api/internal/infrastructure/kv"
	"github.com/jhoicas/devis-api/internal/infrastructure/postgres"
	"github.com/jhoicas/devis-api/internal/infrastructure/redis"
	"github.com/jhoicas/devis-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/devis-api/pkg/config"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// Backend es el almacenamiento abierto. Watcher solo existe si el backend avisa de
// escrituras de otras instancias (Redis).
type Backend struct {
	Name    string
	KV      repository.KVBackend
	Watcher repository.ChangeWatcher

	closers []func() error
}

// Close libera las conexiones en orden inverso de apertura.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Open conecta con el backend indicado por cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	capacity := cfg.Storage.CapacityBytes
	b := &Backend{Name: cfg.Storage.Backend}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		b.KV = kv.NewMemoryBackend(capacity)

	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath, capacity)
		if err != nil {
			return nil, err
		}
		b.KV = s
		b.closers = append(b.closers, s.Close)

	case config.BackendRedis:
		client, err := redis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		r := redis.New(client, cfg.Redis.Channel, capacity, log.Component("redis"))
		b.KV = r
		b.Watcher = r
		b.closers = append(b.closers, client.Close)

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		p, err := postgres.NewKVBackend(ctx, pool, capacity)
		if err != nil {
			pool.Close()
			return nil, err
		}
		b.KV = p
		b.closers = append(b.closers, func() error { pool.Close(); return nil })

	default:
		return nil, fmt.Errorf("backend: desconocido %q", cfg.Storage.Backend)
	}
	return b, nil
}
